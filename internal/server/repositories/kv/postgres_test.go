package kv

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/shared"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	getQuery  = `(?s)^SELECT\s+key,\s*value,\s*updated_at\s+FROM\s+kv\s+WHERE\s+key\s*=\s*\$1\s*$`
	putQuery  = `(?s)^INSERT\s+INTO\s+kv\s*\(key,\s*value,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE.*$`
	listQuery = `(?s)^SELECT\s+key,\s*value,\s*updated_at\s+FROM\s+kv\s+ORDER\s+BY\s+key\s*$`
)

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).AddRow("k", "{}", int64(42))
	mock.ExpectQuery(getQuery).WithArgs("k").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	want := shared.Item{Key: "k", Value: "{}", UpdatedAt: 42}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQuery).WithArgs("k").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "k")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getQuery).WithArgs("k").WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "k")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPut_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(putQuery).WithArgs("k", `{"a":1}`, int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Put(context.Background(), "k", `{"a":1}`, 7); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPut_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(putQuery).WithArgs("k", "v", int64(1)).WillReturnError(errors.New("boom"))

	err := repo.Put(context.Background(), "k", "v", 1)
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow("a", "1", int64(1)).
		AddRow("b", "2", int64(2))
	mock.ExpectQuery(listQuery).WillReturnRows(rows)

	items, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(items) != 2 || items[0].Key != "a" || items[1].UpdatedAt != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).AddRow("a", "1", "not-a-number")
	mock.ExpectQuery(listQuery).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	if err == nil || !regexp.MustCompile(`scan error`).MatchString(err.Error()) {
		t.Fatalf("expected scan error, got %v", err)
	}
}

func TestList_RowsError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow("a", "1", int64(1)).
		RowError(0, errors.New("iter fail"))
	mock.ExpectQuery(listQuery).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	if err == nil || !regexp.MustCompile(`rows error: .*iter fail`).MatchString(err.Error()) {
		t.Fatalf("expected rows error, got %v", err)
	}
}

func TestPing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT 1$`).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping error: %v", err)
	}

	mock.ExpectQuery(`^SELECT 1$`).WillReturnError(errors.New("gone"))
	if err := repo.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}
