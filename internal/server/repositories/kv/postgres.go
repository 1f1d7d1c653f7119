package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/dbx"
	"github.com/dmitrijs2005/drawersync/internal/shared"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (shared.Item, error) {
	query :=
		`SELECT key, value, updated_at FROM kv
		 WHERE key = $1
		 `

	it := shared.Item{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&it.Key, &it.Value, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shared.Item{}, common.ErrNotFound
		}
		return shared.Item{}, fmt.Errorf("db error: %w", err)
	}

	return it, nil
}

func (r *PostgresRepository) Put(ctx context.Context, key, value string, updatedAt int64) error {
	query :=
		`INSERT INTO kv (key, value, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		 `

	if _, err := r.db.ExecContext(ctx, query, key, value, updatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]shared.Item, error) {
	query :=
		`SELECT key, value, updated_at FROM kv
		 ORDER BY key
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := []shared.Item{}
	for rows.Next() {
		var it shared.Item
		if err := rows.Scan(&it.Key, &it.Value, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
