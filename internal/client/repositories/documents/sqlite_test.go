package documents

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/drawersync/internal/client/migrations"
	"github.com/dmitrijs2005/drawersync/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := dbx.OpenSQLite(ctx, "file:documents_"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, dbx.Migrate(ctx, db, migrations.Migrations, migrations.Dialect))
	return db
}

func TestPutAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "drawer.days.v1", `{"default":{"days":{}}}`))

	v, found, err := r.Get(ctx, "drawer.days.v1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"default":{"days":{}}}`, v)
}

func TestGet_Missing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, found, err := r.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)
}

func TestPut_EmptyStringIsStored(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "k", ""))

	_, found, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestPut_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "b", "1"))
	require.NoError(t, r.Put(ctx, "a", "1"))
	require.NoError(t, r.Put(ctx, "b", "2"))

	v, _, err := r.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	v, _, err = r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestWorksInsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLiteRepository(tx).Put(ctx, "k", "v")
	})
	require.NoError(t, err)

	_, found, err := NewSQLiteRepository(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
}
