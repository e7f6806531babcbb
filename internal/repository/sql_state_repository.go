package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/typemnm/Mornoningo/internal/models"
)

const createStateTable = `CREATE TABLE IF NOT EXISTS app_state (
    state_key  VARCHAR(128) PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`

// SQLStateRepository stores the study state as one row keyed by the storage key. It works on
// PostgreSQL and SQLite.
type SQLStateRepository struct {
	db  *sqlx.DB
	key string
}

// NewSQLStateRepository constructs the repository.
func NewSQLStateRepository(db *sqlx.DB, key string) *SQLStateRepository {
	return &SQLStateRepository{db: db, key: key}
}

// EnsureSchema creates the state table when missing.
func (r *SQLStateRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStateTable); err != nil {
		return fmt.Errorf("create app_state table: %w", err)
	}
	return nil
}

func (r *SQLStateRepository) Load(ctx context.Context) (*models.StudyState, error) {
	query := r.db.Rebind(`SELECT payload FROM app_state WHERE state_key = ?`)
	var payload string
	if err := r.db.GetContext(ctx, &payload, query, r.key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load state: %w", err)
	}
	return DecodeState([]byte(payload))
}

func (r *SQLStateRepository) Save(ctx context.Context, state *models.StudyState) error {
	payload, err := EncodeState(state)
	if err != nil {
		return err
	}
	query := r.db.Rebind(`INSERT INTO app_state (state_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (state_key)
DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, r.key, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
