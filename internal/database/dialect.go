package database

// Dialect abstracts all database-specific SQL generation.
// Each database backend (SQLite, PostgreSQL) implements this interface.
// The Placeholder and CaseInsensitiveLike methods match the query.QueryDialect
// interface through Go structural typing, so a Dialect can render catalog templates.
type Dialect interface {
	// DriverName returns the database/sql driver name (e.g. "sqlite", "pgx").
	DriverName() string

	// DSN returns the data source name for opening a connection.
	// For SQLite this is the file path; for PostgreSQL it is a connection string.
	DSN(pathOrConnStr string) string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	// SQLite: "?" (ignoring index), PostgreSQL: "$1", "$2", etc.
	Placeholder(index int) string

	// CaseInsensitiveLike returns the pattern operator that ignores case.
	// SQLite: "LIKE", PostgreSQL: "ILIKE".
	CaseInsensitiveLike() string

	// CreateAirlinesTableSQL returns the DDL for the airlines relation.
	CreateAirlinesTableSQL() string

	// CreateFlightsTableSQL returns the DDL for the flights relation.
	CreateFlightsTableSQL() string

	// CreateIndexSQL returns DDL to create an index on a table column.
	CreateIndexSQL(indexName, tableName, column string) string

	// InsertAirlineSQL returns the parameterized INSERT for one airline (2 columns).
	InsertAirlineSQL() string

	// InsertFlightSQL returns the parameterized INSERT for one flight (9 columns).
	InsertFlightSQL() string
}

// placeholders returns n comma-separated placeholders for d.
func placeholders(d Dialect, n int) string {
	s := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			s += ", "
		}
		s += d.Placeholder(i)
	}
	return s
}
