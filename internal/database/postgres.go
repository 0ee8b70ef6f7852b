package database

import (
	"database/sql"
	"fmt"

	"github.com/cdtdelta/flightdelays/internal/query"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore manages all PostgreSQL operations for a flights database.
// It implements the Store interface.
type PostgresStore struct {
	connStr string
	sqlStore
}

// OpenPostgres opens an existing flights PostgreSQL database.
// A nil catalog selects query.DefaultCatalog.
func OpenPostgres(connStr string, catalog *query.Catalog) (*PostgresStore, error) {
	d := &PostgresDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(connStr))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &PostgresStore{connStr: connStr, sqlStore: newSQLStore(conn, d, catalog)}, nil
}

// CreatePostgres creates the flights schema on a PostgreSQL database.
// The database itself must already exist; this creates the tables and indexes.
func CreatePostgres(connStr string, catalog *query.Catalog) (*PostgresStore, error) {
	d := &PostgresDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(connStr))
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	db := &PostgresStore{connStr: connStr, sqlStore: newSQLStore(conn, d, catalog)}

	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}

// Path returns the connection string used to connect to the database.
func (db *PostgresStore) Path() string {
	return db.connStr
}
