package database

import (
	"database/sql"
	"fmt"

	"github.com/cdtdelta/flightdelays/internal/query"

	_ "modernc.org/sqlite"
)

// SQLiteStore manages all SQLite operations for a flights database.
// It implements the Store interface.
type SQLiteStore struct {
	path string
	sqlStore
}

// OpenSQLite opens an existing flights SQLite database.
// A nil catalog selects query.DefaultCatalog.
func OpenSQLite(path string, catalog *query.Catalog) (*SQLiteStore, error) {
	d := &SQLiteDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify the connection works
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &SQLiteStore{path: path, sqlStore: newSQLStore(conn, d, catalog)}, nil
}

// CreateSQLite creates a new flights SQLite database with the full schema.
func CreateSQLite(path string, catalog *query.Catalog) (*SQLiteStore, error) {
	d := &SQLiteDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(path))
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	db := &SQLiteStore{path: path, sqlStore: newSQLStore(conn, d, catalog)}

	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}

// Path returns the file path of the database.
func (db *SQLiteStore) Path() string {
	return db.path
}
