package oidcauthorization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"unique/internal/auth/models"
	"unique/internal/platform/postgres"
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

func (s *PostgresStore) Create(ctx context.Context, a *models.OidcAuthorization) error {
	query := `
		INSERT INTO oidc_authorizations (id, auth_id, code_id, consent_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(a.ID), uuid.UUID(a.AuthID), uuid.UUID(a.CodeID), uuid.UUID(a.ConsentID), a.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create oidc authorization: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create oidc authorization: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByCodeID(ctx context.Context, codeID id.CodeID) (*models.OidcAuthorization, error) {
	query := `
		SELECT id, auth_id, code_id, consent_id, created_at, replayed_at
		FROM oidc_authorizations
		WHERE code_id = $1
	`
	var a models.OidcAuthorization
	if err := scanInto(tx.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(codeID)).Scan, &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("authorization not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find oidc authorization: %w", err)
	}
	return &a, nil
}

// MarkReplayed stamps replayed_at once; a second replay keeps the first time.
func (s *PostgresStore) MarkReplayed(ctx context.Context, authorizationID id.OidcAuthorizationID, now time.Time) error {
	query := `
		UPDATE oidc_authorizations
		SET replayed_at = COALESCE(replayed_at, $2)
		WHERE id = $1
	`
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx, query, uuid.UUID(authorizationID), now)
	if err != nil {
		return fmt.Errorf("mark oidc authorization replayed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark oidc authorization replayed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("authorization not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListByAuth(ctx context.Context, authID id.AuthID) ([]*models.OidcAuthorization, error) {
	query := `
		SELECT id, auth_id, code_id, consent_id, created_at, replayed_at
		FROM oidc_authorizations
		WHERE auth_id = $1
		ORDER BY created_at
	`
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, uuid.UUID(authID))
	if err != nil {
		return nil, fmt.Errorf("list oidc authorizations: %w", err)
	}
	defer rows.Close()

	var out []*models.OidcAuthorization
	for rows.Next() {
		var a models.OidcAuthorization
		if err := scanInto(rows.Scan, &a); err != nil {
			return nil, fmt.Errorf("scan oidc authorization: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list oidc authorizations: %w", err)
	}
	return out, nil
}

func scanInto(scan func(dest ...any) error, a *models.OidcAuthorization) error {
	var rawID, rawAuthID, rawCodeID, rawConsentID uuid.UUID
	var replayedAt sql.NullTime
	if err := scan(&rawID, &rawAuthID, &rawCodeID, &rawConsentID, &a.CreatedAt, &replayedAt); err != nil {
		return err
	}
	if replayedAt.Valid {
		a.ReplayedAt = &replayedAt.Time
	}
	a.ID = id.OidcAuthorizationID(rawID)
	a.AuthID = id.AuthID(rawAuthID)
	a.CodeID = id.CodeID(rawCodeID)
	a.ConsentID = id.ConsentID(rawConsentID)
	return nil
}
