package sqlstore_test

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-core/internal/platform/sqlstore"
	"github.com/phrazzld/todo-core/internal/testdb"
)

func TestMigrationsEmbedded(t *testing.T) {
	for _, d := range []sqlstore.Dialect{sqlstore.SQLite, sqlstore.Postgres} {
		fsys, err := sqlstore.Migrations(d)
		require.NoError(t, err)

		files, err := fs.Glob(fsys, "*.sql")
		require.NoError(t, err)
		assert.Len(t, files, 2, d.Name)
	}
}

func TestMigrateDownAndUp(t *testing.T) {
	db, dialect := testdb.OpenSQLite(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, sqlstore.Migrate(ctx, db, dialect, "status", log))
	require.NoError(t, sqlstore.Migrate(ctx, db, dialect, "down", log))

	_, err := db.ExecContext(ctx, `SELECT 1 FROM tasks`)
	assert.Error(t, err, "tasks table is dropped by the latest down migration")

	require.NoError(t, sqlstore.Migrate(ctx, db, dialect, "up", log))
	_, err = db.ExecContext(ctx, `SELECT 1 FROM tasks`)
	assert.NoError(t, err)

	assert.Error(t, sqlstore.Migrate(ctx, db, dialect, "sideways", log))
}
