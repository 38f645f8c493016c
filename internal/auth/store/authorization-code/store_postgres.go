package authorizationcode

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

const codeColumns = `id, token, exp, is_enable, nonce, acr, amr, code_challenge, code_challenge_method, created_at`

func (s *PostgresStore) Create(ctx context.Context, code *models.Code) error {
	query := `
		INSERT INTO codes (` + codeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(code.ID),
		code.Token,
		code.ExpiresAt,
		code.IsEnable,
		code.Nonce,
		code.ACR,
		code.AMR,
		code.CodeChallenge,
		string(code.CodeChallengeMethod),
		code.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create authorization code: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create authorization code: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*models.Code, error) {
	query := `SELECT ` + codeColumns + ` FROM codes WHERE token = $1`
	return scanCode(tx.Pick(ctx, s.db).QueryRowContext(ctx, query, token))
}

func (s *PostgresStore) FindByID(ctx context.Context, codeID id.CodeID) (*models.Code, error) {
	query := `SELECT ` + codeColumns + ` FROM codes WHERE id = $1`
	return scanCode(tx.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(codeID)))
}

// Redeem flips is_enable in a single conditional UPDATE so that concurrent
// redemptions of one token produce exactly one success. When no row matches,
// the code is read back to tell not-found, used and expired apart.
func (s *PostgresStore) Redeem(ctx context.Context, token string, now time.Time) (*models.Code, error) {
	q := tx.Pick(ctx, s.db)
	query := `
		UPDATE codes
		SET is_enable = FALSE
		WHERE token = $1 AND is_enable AND exp >= $2
		RETURNING ` + codeColumns
	code, err := scanCode(q.QueryRowContext(ctx, query, token, now))
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("redeem authorization code: %w", err)
	}

	existing, err := s.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := existing.ValidateForRedeem(now); err != nil {
		return existing, err
	}
	// Row was valid on re-read: another writer touched it between the two
	// statements. Treat as used rather than retrying.
	return existing, fmt.Errorf("authorization code changed during redeem: %w", sentinel.ErrAlreadyUsed)
}

func scanCode(row *sql.Row) (*models.Code, error) {
	var c models.Code
	var rawID uuid.UUID
	var method string
	err := row.Scan(
		&rawID,
		&c.Token,
		&c.ExpiresAt,
		&c.IsEnable,
		&c.Nonce,
		&c.ACR,
		&c.AMR,
		&c.CodeChallenge,
		&method,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan authorization code: %w", err)
	}
	c.ID = id.CodeID(rawID)
	c.CodeChallengeMethod = models.CodeChallengeMethod(method)
	return &c, nil
}
