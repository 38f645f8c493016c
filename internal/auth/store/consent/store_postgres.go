package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

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

func (s *PostgresStore) Create(ctx context.Context, consent *models.Consent) error {
	query := `
		INSERT INTO consents (id, scope, is_enable, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(consent.ID), consent.Scope, consent.IsEnable, consent.CreatedAt)
	if err != nil {
		return fmt.Errorf("create consent: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, consentID id.ConsentID) (*models.Consent, error) {
	query := `SELECT id, scope, is_enable, created_at FROM consents WHERE id = $1`
	var c models.Consent
	var rawID uuid.UUID
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(consentID)).Scan(
		&rawID, &c.Scope, &c.IsEnable, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("consent not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find consent: %w", err)
	}
	c.ID = id.ConsentID(rawID)
	return &c, nil
}

// ListByIDs fetches the consents in one round trip with = ANY($1).
func (s *PostgresStore) ListByIDs(ctx context.Context, ids []id.ConsentID) ([]*models.Consent, error) {
	if len(ids) == 0 {
		return []*models.Consent{}, nil
	}
	raw := make([]string, len(ids))
	for i, consentID := range ids {
		raw[i] = consentID.String()
	}
	query := `
		SELECT id, scope, is_enable, created_at
		FROM consents
		WHERE id = ANY($1::uuid[])
		ORDER BY created_at
	`
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Consent, 0, len(ids))
	for rows.Next() {
		var c models.Consent
		var rawID uuid.UUID
		if err := rows.Scan(&rawID, &c.Scope, &c.IsEnable, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan consent: %w", err)
		}
		c.ID = id.ConsentID(rawID)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	return out, nil
}
