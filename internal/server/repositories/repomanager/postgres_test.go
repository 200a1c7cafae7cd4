package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/miniblog/internal/server/repositories/articles"
	"github.com/dmitrijs2005/miniblog/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func stubOpen(t *testing.T, db *sql.DB, err error) *string {
	t.Helper()
	var gotDriver string
	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		gotDriver = driver
		return db, err
	}
	t.Cleanup(func() { sqlOpen = orig })
	return &gotDriver
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	var _ RepositoryManager = NewPostgresRepositoryManager()
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if u := m.Users(db); u == nil {
		t.Fatal("Users() nil")
	}
	if a := m.Articles(db); a == nil {
		t.Fatal("Articles() nil")
	}

	var _ users.Repository = m.Users(db)
	var _ articles.Repository = m.Articles(db)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	})

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpener_Success(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()
	mock.ExpectPing()

	driver := stubOpen(t, db, nil)
	migrated := false
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		migrated = true
		return nil
	})

	got, err := NewPostgresRepositoryManager().Opener("postgres://x")(context.Background())
	if err != nil {
		t.Fatalf("Opener error: %v", err)
	}
	if got != db {
		t.Fatal("Opener returned a different handle")
	}
	if *driver != "pgx" {
		t.Fatalf("driver = %q, want pgx", *driver)
	}
	if !migrated {
		t.Fatal("migrations were not run")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestOpener_OpenError(t *testing.T) {
	stubOpen(t, nil, errors.New("bad dsn"))

	_, err := NewPostgresRepositoryManager().Opener("::")(context.Background())
	if err == nil || !strings.Contains(err.Error(), "open db: bad dsn") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestOpener_PingErrorClosesHandle(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	stubOpen(t, db, nil)
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		t.Fatal("migrations must not run after a failed ping")
		return nil
	})

	_, err := NewPostgresRepositoryManager().Opener("postgres://x")(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ping db: refused") {
		t.Fatalf("expected ping error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}

func TestOpener_MigrationErrorClosesHandle(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectPing()
	mock.ExpectClose()

	stubOpen(t, db, nil)
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("dirty")
	})

	_, err := NewPostgresRepositoryManager().Opener("postgres://x")(context.Background())
	if err == nil || !strings.Contains(err.Error(), "migrate db: dirty") {
		t.Fatalf("expected migrate error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet: %v", err)
	}
}
