package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	_ "modernc.org/sqlite"             // registers the sqlite driver
)

// Open connects to the database described by driver and url, configures the
// pool for the backend and verifies the connection.
func Open(ctx context.Context, driver, url string, logger *slog.Logger) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	dsn := url
	if dialect.Name == SQLite.Name {
		dsn = sqliteDSN(url)
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("failed to open database connection: %w", err)
	}

	if dialect.Name == SQLite.Name {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY
		// and keeps :memory: databases shared by every caller.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger != nil {
		logger.Info("database connection established", slog.String("driver", dialect.Name))
	}
	return db, dialect, nil
}

// sqliteDSN turns a file path into a DSN that enables foreign keys (needed
// for cascading deletes) and a busy timeout on every connection.
func sqliteDSN(path string) string {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	if path == "" || path == ":memory:" {
		return "file::memory:?" + pragmas
	}
	if strings.Contains(path, "_pragma=") {
		return path
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + pragmas
}
