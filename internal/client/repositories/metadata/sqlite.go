package metadata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drawersync/internal/dbx"
	"github.com/dmitrijs2005/drawersync/internal/document"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*SyncMeta, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}

	meta := decode(value)
	return &meta, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, meta SyncMeta) error {
	value, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata[%s]: %w", key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

// decode is lenient: a row written by an older client, or damaged, reads as
// updatedAt 0, which only ever makes the next sync pull.
func decode(value []byte) SyncMeta {
	obj, ok := document.ParseRaw(string(value)).(map[string]any)
	if !ok {
		return SyncMeta{}
	}
	return SyncMeta{UpdatedAt: document.CoerceMillis(obj["updatedAt"])}
}
