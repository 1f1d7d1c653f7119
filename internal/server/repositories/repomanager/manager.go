// Package repomanager opens the key-value backend selected by the server
// configuration, applying goose migrations when the backend is PostgreSQL.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/drawersync/internal/dbx"
	"github.com/dmitrijs2005/drawersync/internal/server/config"
	"github.com/dmitrijs2005/drawersync/internal/server/migrations"
	"github.com/dmitrijs2005/drawersync/internal/server/repositories/kv"
)

// Seams for tests.
var (
	openPostgres  = dbx.OpenPostgres
	runMigrations = dbx.Migrate
	newS3Repo     = kv.NewS3Repository
)

// RepositoryManager owns the backend behind the KV repository.
type RepositoryManager struct {
	kind string
	repo kv.Repository
	db   *sql.DB
}

// Open builds the repository for cfg.Storage.
func Open(ctx context.Context, cfg *config.Config) (*RepositoryManager, error) {
	switch cfg.Storage {
	case "", config.StorageMemory:
		return &RepositoryManager{kind: config.StorageMemory, repo: kv.NewInMemoryRepository()}, nil

	case config.StoragePostgres:
		db, err := openPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := runMigrations(ctx, db, migrations.Migrations, migrations.Dialect); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &RepositoryManager{kind: config.StoragePostgres, repo: kv.NewPostgresRepository(db), db: db}, nil

	case config.StorageS3:
		repo, err := newS3Repo(ctx, kv.S3Options{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3BaseEndpoint,
			AccessKey: cfg.S3RootUser,
			SecretKey: cfg.S3RootPassword,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
		})
		if err != nil {
			return nil, err
		}
		return &RepositoryManager{kind: config.StorageS3, repo: repo}, nil
	}

	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

// Kind names the backend in use.
func (m *RepositoryManager) Kind() string { return m.kind }

// KV returns the key-value repository.
func (m *RepositoryManager) KV() kv.Repository { return m.repo }

// Close releases the database pool, if any.
func (m *RepositoryManager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
