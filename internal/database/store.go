package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cdtdelta/flightdelays/internal/model"
	"github.com/cdtdelta/flightdelays/internal/query"
)

// Store defines the interface for all database operations.
// Everything the engine and the importers need is captured here so that
// callers depend on the interface, not on a concrete database type.
type Store interface {
	// Catalog query execution. On failure the returned slice is empty and the
	// error is a *QueryError.
	Execute(ctx context.Context, id query.TemplateID, params query.Params) ([]model.RawRow, error)

	// Dataset loading
	InsertAirlines(airlines []model.Airline) (int, error)
	InsertFlights(flights []*model.FlightRow, onProgress func(int)) (int, error)
	CountFlights() (int64, error)

	// Lifecycle
	Close() error
	Path() string
}

// index describes one secondary index created with the schema.
type index struct {
	name   string
	table  string
	column string
}

// Indexes created on a new database. The date lookup and the airport
// filter are the selective ones.
var defaultIndexes = []index{
	{name: "flights_date_idx", table: "flights", column: "year, month, day"},
	{name: "flights_origin_idx", table: "flights", column: "origin_airport"},
	{name: "flights_airline_idx", table: "flights", column: "airline"},
}

// sqlStore holds the database/sql plumbing shared by the SQLite and
// PostgreSQL stores. Only opening differs between the two.
type sqlStore struct {
	conn    *sql.DB
	dialect Dialect
	catalog *query.Catalog
}

func newSQLStore(conn *sql.DB, d Dialect, catalog *query.Catalog) sqlStore {
	if catalog == nil {
		catalog = query.DefaultCatalog()
	}
	return sqlStore{conn: conn, dialect: d, catalog: catalog}
}

// Close closes the database handle.
func (s *sqlStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// createSchema builds both tables and their indexes in one transaction.
func (s *sqlStore) createSchema() error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.dialect.CreateAirlinesTableSQL()); err != nil {
		return fmt.Errorf("creating airlines table: %w", err)
	}

	if _, err := tx.Exec(s.dialect.CreateFlightsTableSQL()); err != nil {
		return fmt.Errorf("creating flights table: %w", err)
	}

	for _, idx := range defaultIndexes {
		if _, err := tx.Exec(s.dialect.CreateIndexSQL(idx.name, idx.table, idx.column)); err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return tx.Commit()
}

// InsertAirlines inserts airlines inside a single transaction.
func (s *sqlStore) InsertAirlines(airlines []model.Airline) (int, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(s.dialect.InsertAirlineSQL())
	if err != nil {
		return 0, fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, a := range airlines {
		if _, err := stmt.Exec(a.ID, a.Name); err != nil {
			return inserted, fmt.Errorf("inserting airline %q: %w", a.Name, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("committing transaction: %w", err)
	}
	return inserted, nil
}

// InsertFlights inserts a batch of flights inside a single transaction.
// The onProgress callback is called every 10,000 flights with the current count.
// Pass nil for onProgress if you don't need progress updates.
func (s *sqlStore) InsertFlights(flights []*model.FlightRow, onProgress func(count int)) (int, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(s.dialect.InsertFlightSQL())
	if err != nil {
		return 0, fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, f := range flights {
		_, err := stmt.Exec(
			f.ID, f.Year, f.Month, f.Day, f.AirlineID,
			f.OriginAirport, f.DestinationAirport,
			nullableInt(f.DepartureTime), nullableInt(f.DepartureDelay),
		)
		if err != nil {
			return inserted, fmt.Errorf("inserting flight %d: %w", f.ID, err)
		}
		inserted++
		if onProgress != nil && inserted%10000 == 0 {
			onProgress(inserted)
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("committing transaction: %w", err)
	}
	return inserted, nil
}

// CountFlights returns the number of rows in the flights relation.
func (s *sqlStore) CountFlights() (int64, error) {
	var count int64
	err := s.conn.QueryRow("SELECT COUNT(*) FROM flights").Scan(&count)
	return count, err
}

// nullableInt maps a nil pointer to SQL NULL.
func nullableInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
