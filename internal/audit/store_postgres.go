package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore writes audit events to the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, occurred_at, account_id, action,
			decision, reason, request_id, detail
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		event.AccountID,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByAccount returns events for accountID, oldest first.
func (s *PostgresStore) ListByAccount(ctx context.Context, accountID string) ([]Event, error) {
	query := `
		SELECT category, occurred_at, account_id, action,
			   decision, reason, request_id, detail
		FROM audit_events
		WHERE account_id = $1
		ORDER BY occurred_at, seq
	`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			category string
			event    Event
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.AccountID,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = EventCategory(category)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
