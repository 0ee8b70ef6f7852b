package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cdtdelta/flightdelays/internal/model"
	"github.com/cdtdelta/flightdelays/internal/query"
)

// Execute runs the catalog template id with params bound positionally.
// Each call holds one dedicated connection for its whole duration and
// returns it to the handle on every exit path.
//
// On failure the result is an empty, non-nil slice and a *QueryError.
func (s *sqlStore) Execute(ctx context.Context, id query.TemplateID, params query.Params) ([]model.RawRow, error) {
	rows, err := s.execute(ctx, id, params)
	if err != nil {
		return []model.RawRow{}, err
	}
	return rows, nil
}

func (s *sqlStore) execute(ctx context.Context, id query.TemplateID, params query.Params) ([]model.RawRow, error) {
	tmpl, err := s.catalog.Lookup(id)
	if err != nil {
		return nil, &QueryError{Template: id, Kind: KindInvalidParams, Err: err}
	}

	sqlText := tmpl.SQL(s.dialect)
	if sqlText == "" {
		return nil, &QueryError{Template: id, Kind: KindInvalidParams, Err: errors.New("template has no query text")}
	}

	args, err := tmpl.Bind(params)
	if err != nil {
		return nil, &QueryError{Template: id, Kind: KindInvalidParams, Err: err}
	}

	conn, err := s.conn.Conn(ctx)
	if err != nil {
		return nil, &QueryError{Template: id, Kind: KindUnavailable, Err: fmt.Errorf("acquiring connection: %w", err)}
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, &QueryError{Template: id, Kind: KindExecution, Err: fmt.Errorf("executing query: %w", err)}
	}
	defer rows.Close()

	result, err := scanRawRows(rows)
	if err != nil {
		return nil, &QueryError{Template: id, Kind: KindExecution, Err: err}
	}
	return result, nil
}

// scanRawRows converts sql.Rows into column-keyed rows. Column names are
// lower-cased and driver byte slices are copied into strings.
func scanRawRows(rows *sql.Rows) ([]model.RawRow, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	for i, c := range cols {
		cols[i] = strings.ToLower(c)
	}

	result := []model.RawRow{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row %d: %w", len(result)+1, err)
		}

		row := make(model.RawRow, len(cols))
		for i, c := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[c] = v
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return result, nil
}
