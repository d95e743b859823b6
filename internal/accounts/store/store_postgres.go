package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eanft/internal/accounts/models"
)

// PostgresStore persists account records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert relies on the account_id primary key: one statement either inserts
// or overwrites the keys, so concurrent registrations cannot lose an update.
// xmax = 0 only holds for freshly inserted rows.
func (s *PostgresStore) Upsert(ctx context.Context, record *models.AccountRecord, now time.Time) (*models.AccountRecord, bool, error) {
	query := `
		INSERT INTO accounts (account_id, public_key, all_keys, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (account_id) DO UPDATE SET
			public_key = EXCLUDED.public_key,
			all_keys   = EXCLUDED.all_keys,
			updated_at = EXCLUDED.updated_at
		RETURNING account_id, public_key, all_keys, created_at, updated_at, (xmax = 0) AS inserted
	`
	var out models.AccountRecord
	var inserted bool
	err := s.db.QueryRowContext(ctx, query, record.AccountID, record.PublicKey, record.AllKeys, now).
		Scan(&out.AccountID, &out.PublicKey, &out.AllKeys, &out.CreatedAt, &out.UpdatedAt, &inserted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("upsert account: %w", err)
	}
	return &out, inserted, nil
}

func (s *PostgresStore) FindByAccountID(ctx context.Context, accountID string) (*models.AccountRecord, error) {
	query := `SELECT account_id, public_key, all_keys, created_at, updated_at FROM accounts WHERE account_id = $1`
	var out models.AccountRecord
	err := s.db.QueryRowContext(ctx, query, accountID).
		Scan(&out.AccountID, &out.PublicKey, &out.AllKeys, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.AccountRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, public_key, all_keys, created_at, updated_at FROM accounts ORDER BY account_id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*models.AccountRecord
	for rows.Next() {
		var r models.AccountRecord
		if err := rows.Scan(&r.AccountID, &r.PublicKey, &r.AllKeys, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}
