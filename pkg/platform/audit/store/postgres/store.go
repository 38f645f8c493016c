package postgres

import (
	"context"
	"database/sql"
	"fmt"

	audit "unique/pkg/platform/audit"
	"unique/pkg/platform/tx"
)

// Store writes audit events to the audit_events table. Inside a transaction
// the event commits or rolls back with the caller's writes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (category, action, user_id, client_id, subject, decision, reason, device, ip, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.Pick(ctx, s.db).ExecContext(ctx, query,
		string(event.Category),
		event.Action,
		event.UserID,
		event.ClientID,
		event.Subject,
		event.Decision,
		event.Reason,
		event.Device,
		event.IP,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]audit.Event, error) {
	query := `
		SELECT category, action, user_id, client_id, subject, decision, reason, device, ip, request_id, created_at
		FROM audit_events
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := tx.Pick(ctx, s.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Action, &e.UserID, &e.ClientID, &e.Subject,
			&e.Decision, &e.Reason, &e.Device, &e.IP, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
