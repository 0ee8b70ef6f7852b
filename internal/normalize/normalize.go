// Package normalize turns column-keyed store rows into fixed-shape domain
// values. Nothing past this package sees a model.RawRow.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cdtdelta/flightdelays/internal/model"
)

// NormalizationError reports a row that cannot become a domain value.
// Row is the zero-based position of the row in its batch, or -1 when a
// single row was normalized on its own.
type NormalizationError struct {
	Row    int
	Field  string
	Value  interface{}
	Reason string
}

func (e *NormalizationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("row %d: field %q: %s (value %v)", e.Row, e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("field %q: %s (value %v)", e.Field, e.Reason, e.Value)
}

func fieldError(field string, value interface{}, reason string) *NormalizationError {
	return &NormalizationError{Row: -1, Field: field, Value: value, Reason: reason}
}

// Flight normalizes a lookup row. id, origin, destination and airline must be
// present and non-empty; a null or missing delay becomes 0.
func Flight(row model.RawRow) (model.FlightRecord, error) {
	id, err := requiredInt(row, model.ColID)
	if err != nil {
		return model.FlightRecord{}, err
	}
	origin, err := requiredString(row, model.ColOrigin)
	if err != nil {
		return model.FlightRecord{}, err
	}
	dest, err := requiredString(row, model.ColDestination)
	if err != nil {
		return model.FlightRecord{}, err
	}
	airline, err := requiredString(row, model.ColAirline)
	if err != nil {
		return model.FlightRecord{}, err
	}
	delay, err := Delay(row[model.ColDelay])
	if err != nil {
		return model.FlightRecord{}, err
	}

	return model.FlightRecord{
		ID:          id,
		Origin:      origin,
		Destination: dest,
		Airline:     airline,
		Delay:       delay,
	}, nil
}

// AirlineDelay normalizes a row of the AllFlights projection.
func AirlineDelay(row model.RawRow) (model.AirlineDelay, error) {
	airline, err := requiredString(row, model.ColAirline)
	if err != nil {
		return model.AirlineDelay{}, err
	}
	delay, err := Delay(row[model.ColDelay])
	if err != nil {
		return model.AirlineDelay{}, err
	}
	return model.AirlineDelay{Airline: airline, Delay: delay}, nil
}

// HourDelay normalizes a row of the DepartureTimesAndDelays projection.
// A null hour is not an error; it yields HasHour == false.
func HourDelay(row model.RawRow) (model.HourDelay, error) {
	delay, err := Delay(row[model.ColDelay])
	if err != nil {
		return model.HourDelay{}, err
	}

	raw := row[model.ColHour]
	if raw == nil {
		return model.HourDelay{Delay: delay}, nil
	}
	hour, ok := toInt(raw)
	if !ok {
		return model.HourDelay{}, fieldError(model.ColHour, raw, "not an integer")
	}
	return model.HourDelay{Hour: int(hour), HasHour: true, Delay: delay}, nil
}

// Delay coerces a delay column value to whole minutes. nil and blank text
// become 0, as do negative values (early departures). Other non-numeric
// values are an error.
func Delay(v interface{}) (int, error) {
	if v == nil {
		return 0, nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fieldError(model.ColDelay, v, "not numeric")
	}
	if n < 0 {
		return 0, nil
	}
	return int(n), nil
}

// Flights normalizes a batch of lookup rows, stopping at the first bad row.
// On error no records are returned.
func Flights(rows []model.RawRow) ([]model.FlightRecord, error) {
	return batch(rows, Flight)
}

// AirlineDelays normalizes a batch of AllFlights rows, stopping at the first bad row.
func AirlineDelays(rows []model.RawRow) ([]model.AirlineDelay, error) {
	return batch(rows, AirlineDelay)
}

// HourDelays normalizes a batch of DepartureTimesAndDelays rows, stopping at the first bad row.
func HourDelays(rows []model.RawRow) ([]model.HourDelay, error) {
	return batch(rows, HourDelay)
}

func batch[T any](rows []model.RawRow, fn func(model.RawRow) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		v, err := fn(row)
		if err != nil {
			if ne, ok := err.(*NormalizationError); ok {
				ne.Row = i
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func requiredString(row model.RawRow, field string) (string, error) {
	v, ok := row[field]
	if !ok || v == nil {
		return "", fieldError(field, v, "missing")
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return "", fieldError(field, v, "not text")
	}
	if strings.TrimSpace(s) == "" {
		return "", fieldError(field, v, "empty")
	}
	return s, nil
}

func requiredInt(row model.RawRow, field string) (int64, error) {
	v, ok := row[field]
	if !ok || v == nil {
		return 0, fieldError(field, v, "missing")
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fieldError(field, v, "not an integer")
	}
	return n, nil
}

// toInt accepts the numeric shapes database/sql drivers hand back, plus
// numeric text. Fractional values truncate toward zero.
func toInt(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int16:
		return int64(t), true
	case int8:
		return int64(t), true
	case int:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case float64:
		return floatToInt(t)
	case float32:
		return floatToInt(float64(t))
	case string:
		return parseInt(t)
	case []byte:
		return parseInt(string(t))
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}
