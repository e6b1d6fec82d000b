package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-core/internal/platform/sqlstore"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

var sqliteSeq atomic.Int64

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// IsIntegrationTestEnvironment returns true if a Postgres test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// GetTestDatabaseURL returns DATABASE_URL, falling back to TODO_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("TODO_TEST_DB_URL")
}

// OpenSQLite returns a migrated, private in-memory SQLite database that is
// closed when the test ends.
func OpenSQLite(t testing.TB) (*sql.DB, sqlstore.Dialect) {
	t.Helper()

	// A named shared-cache memory database keeps data private to this test
	// while surviving connection recycling.
	name := fmt.Sprintf("file:testdb_%d_%d?mode=memory&cache=shared", os.Getpid(), sqliteSeq.Add(1))
	return open(t, sqlstore.SQLite.Name, name)
}

// OpenPostgres returns a migrated Postgres database, skipping the test when
// no test database is configured. Tables are truncated on cleanup.
func OpenPostgres(t testing.TB) (*sql.DB, sqlstore.Dialect) {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or TODO_TEST_DB_URL not set - skipping integration test")
	}

	db, dialect := open(t, sqlstore.Postgres.Name, dbURL)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
		defer cancel()
		if _, err := db.ExecContext(ctx, `TRUNCATE tasks, task_lists RESTART IDENTITY CASCADE`); err != nil {
			t.Logf("Warning: failed to truncate test tables: %v", err)
		}
	})
	return db, dialect
}

func open(t testing.TB, driver, url string) (*sql.DB, sqlstore.Dialect) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, dialect, err := sqlstore.Open(ctx, driver, url, nil)
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, sqlstore.Migrate(ctx, db, dialect, "up", discardLogger()),
		"failed to run migrations")

	t.Cleanup(func() { CleanupDB(t, db) })
	return db, dialect
}

// CleanupDB closes db, logging rather than failing on error.
func CleanupDB(t testing.TB, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		t.Logf("Warning: failed to close database connection: %v", err)
	}
}

// WithTx runs fn inside a transaction that is always rolled back, so the
// test leaves no data behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
