package store

import (
	"context"
	"fmt"
	"time"

	"unique/internal/auth/models"
	"unique/internal/auth/secrets"
	id "unique/pkg/domain"
)

const (
	DevClientID    = "test-client"
	DevRedirectURI = "http://localhost:3000/callback"
	DevUserEmail   = "alice@example.com"
	DevUserLogin   = "alice"
)

// SeedDevClient registers a demo app and user for local development. The user
// logs in as DevUserLogin with the same secret as the client.
func SeedDevClient(ctx context.Context, users UserCreator, apps AppCreator, clientSecret string, now time.Time) (*models.App, *models.User, error) {
	secretHash, err := secrets.Hash(clientSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("hash dev client secret: %w", err)
	}
	passwordHash, err := secrets.Hash(clientSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("hash dev user password: %w", err)
	}

	app, err := models.NewApp(
		id.NewAppID(),
		DevClientID,
		secretHash,
		"Local development client",
		[]string{DevRedirectURI, "http://localhost"},
		nil,
		[]string{"openid", "profile", "email"},
		now,
	)
	if err != nil {
		return nil, nil, err
	}
	if err := apps.Create(ctx, app); err != nil {
		return nil, nil, fmt.Errorf("seed dev app: %w", err)
	}

	user := &models.User{
		ID:        id.NewUserID(),
		CustomID:     DevUserLogin,
		Name:         "Alice Example",
		Email:        DevUserEmail,
		PasswordHash: passwordHash,
		IsEnable:     true,
		CreatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("seed dev user: %w", err)
	}
	return app, user, nil
}
