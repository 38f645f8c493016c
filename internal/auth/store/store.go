// Package store holds the persistence backends of the authorization flow.
// Each sub-package provides an in-memory and a Postgres implementation.
package store

import (
	"context"

	"unique/internal/auth/models"
)

// UserCreator and AppCreator are write paths the flow itself never uses;
// registration lives outside this service. The dev seed and tests write
// through these, and tests plant sessions through SessionCreator.
type UserCreator interface {
	Create(ctx context.Context, user *models.User) error
}

type AppCreator interface {
	Create(ctx context.Context, app *models.App) error
}

type SessionCreator interface {
	Create(ctx context.Context, session *models.Session) error
}
