package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"unique/internal/auth/models"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetOrCreate inserts the pair and ignores a conflict, then reads back the
// surviving row. Concurrent first calls converge on a single Auth.
func (s *PostgresStore) GetOrCreate(ctx context.Context, userID id.UserID, appID id.AppID, now time.Time) (*models.Auth, error) {
	q := tx.Pick(ctx, s.db)
	insert := `
		INSERT INTO auths (id, auth_user_id, app_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth_user_id, app_id) DO NOTHING
	`
	if _, err := q.ExecContext(ctx, insert, uuid.New(), uuid.UUID(userID), uuid.UUID(appID), now); err != nil {
		return nil, fmt.Errorf("insert auth: %w", err)
	}
	query := `
		SELECT id, auth_user_id, app_id, created_at
		FROM auths
		WHERE auth_user_id = $1 AND app_id = $2
	`
	return scanAuth(q.QueryRowContext(ctx, query, uuid.UUID(userID), uuid.UUID(appID)))
}

func (s *PostgresStore) FindByID(ctx context.Context, authID id.AuthID) (*models.Auth, error) {
	query := `
		SELECT id, auth_user_id, app_id, created_at
		FROM auths
		WHERE id = $1
	`
	return scanAuth(tx.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(authID)))
}

func scanAuth(row *sql.Row) (*models.Auth, error) {
	var a models.Auth
	var rawID, rawUserID, rawAppID uuid.UUID
	if err := row.Scan(&rawID, &rawUserID, &rawAppID, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auth not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find auth: %w", err)
	}
	a.ID = id.AuthID(rawID)
	a.UserID = id.UserID(rawUserID)
	a.AppID = id.AppID(rawAppID)
	return &a, nil
}
