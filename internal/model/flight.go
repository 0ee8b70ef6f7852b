package model

import "strings"

// Column names produced by the lookup templates. The store adapter lower-cases
// every column name, so these are the keys found in a RawRow.
const (
	ColID          = "id"
	ColOrigin      = "origin"
	ColDestination = "destination"
	ColAirline     = "airline"
	ColDelay       = "delay"
	ColHour        = "hour"
)

// RawRow is one result row keyed by lower-cased column name.
// It only travels between the store adapter and the normalizer.
type RawRow map[string]interface{}

// FlightRecord represents a single normalized flight occurrence.
// Delay is in minutes and is never negative.
type FlightRecord struct {
	ID          int64  `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Airline     string `json:"airline"`
	Delay       int    `json:"delay"`
}

// Delayed reports whether the flight left later than scheduled.
func (f FlightRecord) Delayed() bool {
	return f.Delay > 0
}

// Row returns the record in the shape the store adapter produces for lookup templates.
func (f FlightRecord) Row() RawRow {
	return RawRow{
		ColID:          f.ID,
		ColOrigin:      f.Origin,
		ColDestination: f.Destination,
		ColAirline:     f.Airline,
		ColDelay:       int64(f.Delay),
	}
}

// AirlineDelay is the airline + delay projection used by the airline rollup.
type AirlineDelay struct {
	Airline string
	Delay   int
}

// HourDelay is the departure hour + delay projection used by the hourly rollup.
// HasHour is false when the source row had no departure time.
type HourDelay struct {
	Hour    int
	HasHour bool
	Delay   int
}

// Share pairs a rollup category with the percentage of delayed flights in it.
type Share[K comparable] struct {
	Category   K       `json:"category"`
	Percentage float64 `json:"percentage"`
}

// Airline is a row of the airlines relation.
type Airline struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"-"`
	Name string `json:"airline" db:"airline"`
}

// FlightRow is a row of the flights relation as stored, before any join.
// Nullable columns are pointers.
type FlightRow struct {
	ID                 int64  `json:"id" db:"id"`
	Year               int    `json:"year" db:"year"`
	Month              int    `json:"month" db:"month"`
	Day                int    `json:"day" db:"day"`
	AirlineID          int64  `json:"airline" db:"airline"`
	OriginAirport      string `json:"origin_airport" db:"origin_airport"`
	DestinationAirport string `json:"destination_airport" db:"destination_airport"`
	DepartureTime      *int   `json:"departure_time" db:"departure_time"`
	DepartureDelay     *int   `json:"departure_delay" db:"departure_delay"`
}

// AirlineIDs maps each airline code, upper-cased, to its id. Airlines with
// no code are skipped.
func AirlineIDs(airlines []Airline) map[string]int64 {
	ids := make(map[string]int64, len(airlines))
	for _, a := range airlines {
		if a.Code == "" {
			continue
		}
		ids[strings.ToUpper(a.Code)] = a.ID
	}
	return ids
}
