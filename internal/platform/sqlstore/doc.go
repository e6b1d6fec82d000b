// Package sqlstore implements the store interfaces on top of database/sql.
//
// Two backends are supported through a Dialect: PostgreSQL via the pgx stdlib
// driver and SQLite via modernc.org/sqlite. Queries are written once with ?
// placeholders and rebound for the active dialect. The schema for each dialect
// is embedded and applied with goose.
package sqlstore
