// Package testdb provides database fixtures for tests.
//
// OpenSQLite gives every test its own migrated in-memory SQLite database and
// needs no external services. OpenPostgres connects to the database named by
// DATABASE_URL (or TODO_TEST_DB_URL), migrates it, and skips the test when
// neither variable is set.
//
// Typical use:
//
//	func TestSomething(t *testing.T) {
//	    db, dialect := testdb.OpenSQLite(t)
//	    tasks := sqlstore.NewTaskStore(db, dialect, nil)
//	    ...
//	}
package testdb
