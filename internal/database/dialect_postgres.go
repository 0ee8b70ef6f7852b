package database

import "fmt"

// PostgresDialect implements the Dialect interface for PostgreSQL databases.
// It also satisfies query.QueryDialect through structural typing.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string              { return "pgx" }
func (d *PostgresDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *PostgresDialect) Placeholder(index int) string    { return fmt.Sprintf("$%d", index) }
func (d *PostgresDialect) CaseInsensitiveLike() string     { return "ILIKE" }

func (d *PostgresDialect) CreateAirlinesTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS airlines (
		id BIGINT PRIMARY KEY,
		airline TEXT NOT NULL
	)`
}

func (d *PostgresDialect) CreateFlightsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS flights (
		id BIGINT PRIMARY KEY,
		year INT, month INT, day INT,
		airline BIGINT REFERENCES airlines(id),
		origin_airport TEXT, destination_airport TEXT,
		departure_time INT, departure_delay INT
	)`
}

func (d *PostgresDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, column)
}

func (d *PostgresDialect) InsertAirlineSQL() string {
	return "INSERT INTO airlines (id, airline) VALUES (" + placeholders(d, 2) + ")"
}

func (d *PostgresDialect) InsertFlightSQL() string {
	return `INSERT INTO flights (
		id, year, month, day, airline, origin_airport,
		destination_airport, departure_time, departure_delay
	) VALUES (` + placeholders(d, 9) + ")"
}
