package issuedtoken

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

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *models.TokenRecord) error {
	query := `
		INSERT INTO tokens (id, kind, hash, scope, issued_at, exp, client_id, user_id, revoked, nonce, auth_time, acr, amr)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID),
		r.Kind.String(),
		r.Hash,
		r.Scope,
		r.IssuedAt,
		r.ExpireAt,
		r.ClientID,
		uuid.UUID(r.UserID),
		r.Revoked,
		r.Nonce,
		r.AuthTime,
		r.ACR,
		r.AMR,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create token: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateSet(ctx context.Context, set *models.TokenSet) error {
	query := `
		INSERT INTO token_sets (id, oidc_authorization_id, access_token_id, refresh_token_id, id_token_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var idTokenID *uuid.UUID
	if set.IDTokenID != nil {
		u := uuid.UUID(*set.IDTokenID)
		idTokenID = &u
	}
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(set.ID),
		uuid.UUID(set.OidcAuthorizationID),
		uuid.UUID(set.AccessTokenID),
		uuid.UUID(set.RefreshTokenID),
		idTokenID,
		set.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create token set: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create token set: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByHash(ctx context.Context, hash string) (*models.TokenRecord, error) {
	query := `
		SELECT id, kind, hash, scope, issued_at, exp, client_id, user_id, revoked, nonce, auth_time, acr, amr
		FROM tokens
		WHERE hash = $1
	`
	var r models.TokenRecord
	var rawID, rawUserID uuid.UUID
	var kind string
	var authTime sql.NullTime
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, query, hash).Scan(
		&rawID, &kind, &r.Hash, &r.Scope, &r.IssuedAt, &r.ExpireAt, &r.ClientID,
		&rawUserID, &r.Revoked, &r.Nonce, &authTime, &r.ACR, &r.AMR)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	if r.Kind, err = models.ParseTokenKind(kind); err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	r.ID = id.TokenID(rawID)
	r.UserID = id.UserID(rawUserID)
	if authTime.Valid {
		r.AuthTime = &authTime.Time
	}
	return &r, nil
}

func (s *PostgresStore) FindSetByAuthorization(ctx context.Context, authorizationID id.OidcAuthorizationID) (*models.TokenSet, error) {
	query := `
		SELECT id, oidc_authorization_id, access_token_id, refresh_token_id, id_token_id, created_at
		FROM token_sets
		WHERE oidc_authorization_id = $1
	`
	var set models.TokenSet
	var rawID, rawAuthzID, rawAccess, rawRefresh uuid.UUID
	var rawIDToken uuid.NullUUID
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(authorizationID)).Scan(
		&rawID, &rawAuthzID, &rawAccess, &rawRefresh, &rawIDToken, &set.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token set not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find token set: %w", err)
	}
	set.ID = id.TokenSetID(rawID)
	set.OidcAuthorizationID = id.OidcAuthorizationID(rawAuthzID)
	set.AccessTokenID = id.TokenID(rawAccess)
	set.RefreshTokenID = id.TokenID(rawRefresh)
	if rawIDToken.Valid {
		t := id.TokenID(rawIDToken.UUID)
		set.IDTokenID = &t
	}
	return &set, nil
}

// Revoke flips revoked for the given tokens. The WHERE clause keeps the
// transition one-way.
func (s *PostgresStore) Revoke(ctx context.Context, ids []id.TokenID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	raw := make([]string, len(ids))
	for i, tokenID := range ids {
		raw[i] = tokenID.String()
	}
	res, err := tx.Pick(ctx, s.db).ExecContext(ctx,
		`UPDATE tokens SET revoked = TRUE WHERE id = ANY($1::uuid[]) AND NOT revoked`, pq.Array(raw))
	if err != nil {
		return 0, fmt.Errorf("revoke tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke tokens: %w", err)
	}
	return int(n), nil
}
