package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"unique/internal/auth/models"
	"unique/internal/platform/postgres"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

// PostgresStore persists registered apps. The list columns are text[].
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const appColumns = `id, client_id, client_secret_hash, name, redirect_uris, aud, allowed_scopes, is_enable, created_at`

func (s *PostgresStore) Create(ctx context.Context, app *models.App) error {
	query := `
		INSERT INTO apps (` + appColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(app.ID),
		app.ClientID,
		app.ClientSecretHash,
		app.Name,
		pq.Array(app.RedirectURIs),
		pq.Array(nonNil(app.Aud)),
		pq.Array(nonNil(app.AllowedScopes)),
		app.IsEnable,
		app.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create app: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create app: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.AppID) (*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps WHERE id = $1`
	return scanApp(tx.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(appID)))
}

func (s *PostgresStore) FindByClientID(ctx context.Context, clientID string) (*models.App, error) {
	query := `SELECT ` + appColumns + ` FROM apps WHERE client_id = $1`
	return scanApp(tx.Pick(ctx, s.db).QueryRowContext(ctx, query, clientID))
}

func scanApp(row *sql.Row) (*models.App, error) {
	var a models.App
	var rawID uuid.UUID
	err := row.Scan(
		&rawID,
		&a.ClientID,
		&a.ClientSecretHash,
		&a.Name,
		pq.Array(&a.RedirectURIs),
		pq.Array(&a.Aud),
		pq.Array(&a.AllowedScopes),
		&a.IsEnable,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("app not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find app: %w", err)
	}
	a.ID = id.AppID(rawID)
	return &a, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
