package database

import "fmt"

// SQLiteDialect implements the Dialect interface for SQLite databases.
// It also satisfies query.QueryDialect through structural typing.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string              { return "sqlite" }
func (d *SQLiteDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *SQLiteDialect) Placeholder(index int) string    { return "?" }
func (d *SQLiteDialect) CaseInsensitiveLike() string     { return "LIKE" }

func (d *SQLiteDialect) CreateAirlinesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS airlines (
		id INTEGER PRIMARY KEY,
		airline TEXT NOT NULL
	)`
}

func (d *SQLiteDialect) CreateFlightsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS flights (
		id INTEGER PRIMARY KEY,
		year INT, month INT, day INT,
		airline INT REFERENCES airlines(id),
		origin_airport TEXT, destination_airport TEXT,
		departure_time INT, departure_delay INT
	)`
}

func (d *SQLiteDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, column)
}

func (d *SQLiteDialect) InsertAirlineSQL() string {
	return "INSERT INTO airlines (id, airline) VALUES (" + placeholders(d, 2) + ")"
}

func (d *SQLiteDialect) InsertFlightSQL() string {
	return `INSERT INTO flights (
		id, year, month, day, airline, origin_airport,
		destination_airport, departure_time, departure_delay
	) VALUES (` + placeholders(d, 9) + ")"
}
