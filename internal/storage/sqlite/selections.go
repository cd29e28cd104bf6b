package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SelectionsRepo persists the last chosen model and context names.
type SelectionsRepo struct {
	db *sql.DB
}

func NewSelectionsRepo(db *sql.DB) *SelectionsRepo {
	return &SelectionsRepo{db: db}
}

func (r *SelectionsRepo) GetSelection(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM selections WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read selection %s: %w", key, err)
	}
	return value, nil
}

func (r *SelectionsRepo) SetSelection(ctx context.Context, key, value string) error {
	query := `INSERT INTO selections (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to store selection %s: %w", key, err)
	}
	return nil
}
