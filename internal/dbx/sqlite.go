package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteDriver is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriver = "sqlite"

// sqlitePragmas are applied to every connection. WAL lets the REPL and a
// background sync read while the other writes; busy_timeout avoids
// SQLITE_BUSY when two processes share one file.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
}

// SQLiteDSN turns path into a modernc URI DSN carrying the standard pragmas.
// In-memory databases (":memory:" or "file:...mode=memory") skip journal_mode.
func SQLiteDSN(path string) string {
	memory := path == ":memory:" || strings.Contains(path, "mode=memory")

	q := url.Values{}
	for _, p := range sqlitePragmas {
		if memory && strings.HasPrefix(p, "journal_mode") {
			continue
		}
		q.Add("_pragma", p)
	}

	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// OpenSQLite opens the database at path and verifies the connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(SQLiteDriver, SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database %s: %w", path, err)
	}
	return db, nil
}
