package query

import "fmt"

// QueryDialect abstracts SQL syntax differences needed to render catalog templates.
// Each database backend provides an implementation. The default is SQLite.
type QueryDialect interface {
	// Placeholder returns the parameter placeholder for the given 1-based index.
	// SQLite returns "?" (ignoring the index), PostgreSQL returns "$1", "$2", etc.
	Placeholder(index int) string

	// CaseInsensitiveLike returns the operator used for substring matches that
	// ignore case. SQLite's LIKE already folds ASCII case; PostgreSQL needs ILIKE.
	CaseInsensitiveLike() string
}

// sqliteQueryDialect is the default dialect, producing SQLite-compatible SQL.
type sqliteQueryDialect struct{}

func (d sqliteQueryDialect) Placeholder(index int) string { return "?" }
func (d sqliteQueryDialect) CaseInsensitiveLike() string  { return "LIKE" }

// postgresQueryDialect renders numbered placeholders and ILIKE.
type postgresQueryDialect struct{}

func (d postgresQueryDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }
func (d postgresQueryDialect) CaseInsensitiveLike() string  { return "ILIKE" }

// DefaultDialect is the query dialect used when none is explicitly set.
// It produces SQLite-compatible SQL.
var DefaultDialect QueryDialect = sqliteQueryDialect{}

// PostgresDialect produces PostgreSQL-compatible SQL. It is mostly useful in
// tests; the database package supplies its own dialect at runtime.
var PostgresDialect QueryDialect = postgresQueryDialect{}
