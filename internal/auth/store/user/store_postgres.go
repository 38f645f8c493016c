package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"unique/internal/auth/models"
	"unique/internal/platform/postgres"
	id "unique/pkg/domain"
	"unique/pkg/platform/sentinel"
	"unique/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, custom_id, name, email, password_hash, is_enable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(user.ID), user.CustomID, user.Name, user.Email, user.PasswordHash, user.IsEnable, user.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, "id = $1", uuid.UUID(userID))
}

// FindByCustomID looks a user up by login name.
func (s *PostgresStore) FindByCustomID(ctx context.Context, customID string) (*models.User, error) {
	return s.findOne(ctx, "custom_id = $1", customID)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, custom_id, name, email, password_hash, is_enable, created_at
		FROM users
		WHERE ` + where
	var u models.User
	var rawID uuid.UUID
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, query, arg).Scan(
		&rawID, &u.CustomID, &u.Name, &u.Email, &u.PasswordHash, &u.IsEnable, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = id.UserID(rawID)
	return &u, nil
}
