package database

import (
	"fmt"

	"github.com/cdtdelta/flightdelays/internal/query"
)

// ErrorKind classifies a QueryError by where the failure happened.
type ErrorKind int

const (
	// KindUnavailable means no connection to the store could be acquired.
	KindUnavailable ErrorKind = iota

	// KindInvalidParams means the template or its parameters were rejected
	// before anything was sent to the store.
	KindInvalidParams

	// KindExecution means the store accepted the connection but failed while
	// running the query or reading its rows.
	KindExecution
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "store unavailable"
	case KindInvalidParams:
		return "invalid parameters"
	case KindExecution:
		return "execution failed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// QueryError reports a failed catalog query. A caller that receives one also
// receives an empty row slice; an empty slice with a nil error is a genuine
// zero-row result.
type QueryError struct {
	Template query.TemplateID
	Kind     ErrorKind
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %s: %v", e.Template, e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
