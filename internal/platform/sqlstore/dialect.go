package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the differences between the supported SQL backends.
type Dialect struct {
	// Name is the configuration name of the backend: postgres or sqlite.
	Name string
	// DriverName is the database/sql driver registered for the backend.
	DriverName string
	// GooseDialect is the dialect name understood by goose.
	GooseDialect string

	numbered bool
	likeOp   string
}

var (
	// Postgres talks to PostgreSQL through pgx.
	Postgres = Dialect{
		Name:         "postgres",
		DriverName:   "pgx",
		GooseDialect: "postgres",
		numbered:     true,
		likeOp:       "ILIKE",
	}

	// SQLite talks to an embedded SQLite database. LIKE is already
	// case-insensitive for ASCII there.
	SQLite = Dialect{
		Name:         "sqlite",
		DriverName:   "sqlite",
		GooseDialect: "sqlite3",
		likeOp:       "LIKE",
	}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case Postgres.Name, "postgresql", "pgx":
		return Postgres, nil
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", name)
	}
}

// Rebind rewrites ? placeholders into the dialect's native form.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Like returns the case-insensitive pattern-match operator.
func (d Dialect) Like() string {
	return d.likeOp
}

// placeholders returns "?, ?, ..." with n entries.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
