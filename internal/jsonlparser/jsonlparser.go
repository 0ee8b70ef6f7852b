package jsonlparser

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/cdtdelta/flightdelays/internal/model"
)

// ReadResult contains the outcome of a JSONL import operation.
type ReadResult struct {
	Flights  []*model.FlightRow
	Count    int
	Excluded int
}

// Keys every flight object must carry. departure_time and departure_delay
// may be null or absent.
var requiredKeys = []string{"id", "year", "month", "day", "airline", "origin_airport", "destination_airport"}

// ValidateFile checks if a file looks like flights JSONL by reading the first line.
func ValidateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		return fmt.Errorf("empty file")
	}

	line := strings.TrimSpace(scanner.Text())
	if len(line) == 0 || line[0] != '{' {
		return fmt.Errorf("first line is not a JSON object")
	}
	if !gjson.Valid(line) {
		return fmt.Errorf("first line is not valid JSON")
	}

	obj := gjson.Parse(line)
	for _, key := range requiredKeys {
		if !obj.Get(key).Exists() {
			return fmt.Errorf("no %s field found; does not appear to be flights JSONL", key)
		}
	}

	return nil
}

// ReadFlights reads all flights from a JSONL file, one object per line.
// The airline key holds a code, resolved through airlineIDs, or a numeric id.
// Lines that are not valid flight objects are excluded.
// An onProgress callback is called every 10,000 flights if non-nil.
func ReadFlights(path string, airlineIDs map[string]int64, onProgress func(count int)) (*ReadResult, error) {
	if err := ValidateFile(path); err != nil {
		return nil, fmt.Errorf("invalid JSONL: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	result := &ReadResult{}
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !gjson.Valid(line) {
			result.Excluded++
			continue
		}

		flight := mapToFlight(gjson.Parse(line), airlineIDs)
		if flight == nil {
			result.Excluded++
			continue
		}

		result.Flights = append(result.Flights, flight)
		result.Count++

		if onProgress != nil && result.Count%10000 == 0 {
			onProgress(result.Count)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file at line %d: %w", lineNum, err)
	}

	return result, nil
}

// mapToFlight converts one JSON object to a FlightRow, or nil when a
// required field is missing or has the wrong type.
func mapToFlight(obj gjson.Result, airlineIDs map[string]int64) *model.FlightRow {
	if !obj.IsObject() {
		return nil
	}

	id, ok := wholeNumber(obj.Get("id"))
	if !ok {
		return nil
	}
	year, ok1 := wholeNumber(obj.Get("year"))
	month, ok2 := wholeNumber(obj.Get("month"))
	day, ok3 := wholeNumber(obj.Get("day"))
	if !ok1 || !ok2 || !ok3 {
		return nil
	}

	airline, ok := resolveAirline(obj.Get("airline"), airlineIDs)
	if !ok {
		return nil
	}

	origin := obj.Get("origin_airport")
	dest := obj.Get("destination_airport")
	if origin.Type != gjson.String || dest.Type != gjson.String {
		return nil
	}

	depTime, ok := nullableNumber(obj.Get("departure_time"))
	if !ok {
		return nil
	}
	depDelay, ok := nullableNumber(obj.Get("departure_delay"))
	if !ok {
		return nil
	}

	return &model.FlightRow{
		ID:                 id,
		Year:               int(year),
		Month:              int(month),
		Day:                int(day),
		AirlineID:          airline,
		OriginAirport:      strings.TrimSpace(origin.String()),
		DestinationAirport: strings.TrimSpace(dest.String()),
		DepartureTime:      depTime,
		DepartureDelay:     depDelay,
	}
}

func resolveAirline(r gjson.Result, airlineIDs map[string]int64) (int64, bool) {
	switch r.Type {
	case gjson.Number:
		return wholeNumber(r)
	case gjson.String:
		code := strings.ToUpper(strings.TrimSpace(r.String()))
		if id, ok := airlineIDs[code]; ok {
			return id, true
		}
		if id, err := strconv.ParseInt(code, 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

// wholeNumber accepts a JSON number or a numeric string. Fractions are truncated.
func wholeNumber(r gjson.Result) (int64, bool) {
	switch r.Type {
	case gjson.Number:
		return int64(r.Num), true
	case gjson.String:
		s := strings.TrimSpace(r.String())
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

// nullableNumber treats null, an absent key and an empty string as NULL.
func nullableNumber(r gjson.Result) (*int, bool) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, true
	}
	if r.Type == gjson.String && strings.TrimSpace(r.String()) == "" {
		return nil, true
	}
	v, ok := wholeNumber(r)
	if !ok {
		return nil, false
	}
	n := int(v)
	return &n, true
}
