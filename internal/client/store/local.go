// Package store is the local key-value collaborator of the sync engine: raw
// document strings and their sync metadata, both kept in the client SQLite
// database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/drawersync/internal/client/migrations"
	"github.com/dmitrijs2005/drawersync/internal/client/repositories/documents"
	"github.com/dmitrijs2005/drawersync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/drawersync/internal/dbx"
)

// SyncMeta is re-exported so callers need not import the repository.
type SyncMeta = metadata.SyncMeta

// Store is what the syncer and the services need from local storage.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	GetMeta(ctx context.Context, key string) (SyncMeta, bool, error)
	SetMeta(ctx context.Context, key string, meta SyncMeta) error
	// SetWithMeta writes the value and its metadata atomically.
	SetWithMeta(ctx context.Context, key, value string, meta SyncMeta) error
	// SetIfUnchanged behaves like SetWithMeta but only when the stored value
	// still equals expected ("" standing for absent). It reports whether the
	// write happened.
	SetIfUnchanged(ctx context.Context, key, expected, value string, meta SyncMeta) (bool, error)
}

// Local implements Store over SQLite.
type Local struct {
	db        *sql.DB
	path      string
	documents documents.Repository
	metadata  metadata.Repository
}

// Open opens (or creates) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Local, error) {
	db, err := dbx.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := dbx.Migrate(ctx, db, migrations.Migrations, migrations.Dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	l := New(db)
	l.path = path
	return l, nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Local {
	return &Local{
		db:        db,
		documents: documents.NewSQLiteRepository(db),
		metadata:  metadata.NewSQLiteRepository(db),
	}
}

// Path is the file the store was opened from, "" for New.
func (l *Local) Path() string { return l.path }

func (l *Local) Close() error { return l.db.Close() }

func (l *Local) Get(ctx context.Context, key string) (string, bool, error) {
	return l.documents.Get(ctx, key)
}

func (l *Local) Set(ctx context.Context, key, value string) error {
	return l.documents.Put(ctx, key, value)
}

// GetMeta reports found=false when no metadata exists; the returned SyncMeta
// is then the zero value.
func (l *Local) GetMeta(ctx context.Context, key string) (SyncMeta, bool, error) {
	m, err := l.metadata.Get(ctx, key)
	if err != nil {
		return SyncMeta{}, false, err
	}
	if m == nil {
		return SyncMeta{}, false, nil
	}
	return *m, true, nil
}

func (l *Local) SetMeta(ctx context.Context, key string, meta SyncMeta) error {
	return l.metadata.Set(ctx, key, meta)
}

func (l *Local) SetWithMeta(ctx context.Context, key, value string, meta SyncMeta) error {
	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := documents.NewSQLiteRepository(tx).Put(ctx, key, value); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Set(ctx, key, meta)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (l *Local) SetIfUnchanged(ctx context.Context, key, expected, value string, meta SyncMeta) (bool, error) {
	applied := false
	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docs := documents.NewSQLiteRepository(tx)

		current, _, err := docs.Get(ctx, key)
		if err != nil {
			return err
		}
		if current != expected {
			return nil
		}

		if value != current {
			if err := docs.Put(ctx, key, value); err != nil {
				return err
			}
		}
		if err := metadata.NewSQLiteRepository(tx).Set(ctx, key, meta); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to save %s: %w", key, err)
	}
	return applied, nil
}
