package session

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

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, ip, user_agent, created_at, expires_at, is_enable)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(session.ID), uuid.UUID(session.UserID), session.IP, session.UserAgent,
		session.CreatedAt, session.ExpiresAt, session.IsEnable)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("create session: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	query := `
		SELECT id, user_id, ip, user_agent, created_at, expires_at, is_enable
		FROM sessions
		WHERE id = $1
	`
	var sess models.Session
	var rawID, rawUserID uuid.UUID
	err := tx.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(sessionID)).Scan(
		&rawID, &rawUserID, &sess.IP, &sess.UserAgent, &sess.CreatedAt, &sess.ExpiresAt, &sess.IsEnable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	sess.ID = id.SessionID(rawID)
	sess.UserID = id.UserID(rawUserID)
	return &sess, nil
}
