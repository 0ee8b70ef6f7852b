package csvparser

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cdtdelta/flightdelays/internal/model"
	"github.com/cdtdelta/flightdelays/internal/query"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("writing temp CSV: %v", err)
	}
	return path
}

const airlinesCSV = `IATA_CODE,AIRLINE
UA,United Air Lines Inc.
AA,American Airlines Inc.
NK,Spirit Air Lines
`

// Columns in a different order from flightColumns, with extras mixed in.
const flightsCSV = `YEAR,MONTH,DAY,DAY_OF_WEEK,AIRLINE,ID,ORIGIN_AIRPORT,DESTINATION_AIRPORT,DEPARTURE_TIME,DEPARTURE_DELAY,DISTANCE
2015,1,1,4,UA,1,SFO,ORD,935,25,1846
2015,1,1,4,nk,2,FLL,LAX,,,2342
2015,1,1,4,ZZ,3,LAX,JFK,1000,2,2475
2015,1,2,5,2,4,JFK,LAX,2400.0,-4,2475
2015,1,2,5,AA,x,JFK,LAX,700,0,2475
`

var testAirlineIDs = map[string]int64{"UA": 1, "AA": 2, "NK": 3}

func intPtr(v int) *int { return &v }

func TestWriteFlights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flight_1.csv")

	records := []model.FlightRecord{
		{ID: 1, Origin: "SFO", Destination: "ORD", Airline: "United Air Lines Inc.", Delay: 25},
		{ID: 2, Origin: "FLL", Destination: "LAX", Airline: "Spirit, Air Lines", Delay: 0},
	}

	if err := WriteFlights(path, records); err != nil {
		t.Fatalf("WriteFlights failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}

	want := "ID,Origin,Destination,Airline,Delay\n" +
		"1,SFO,ORD,United Air Lines Inc.,25\n" +
		"2,FLL,LAX,\"Spirit, Air Lines\",0\n"
	if string(data) != want {
		t.Errorf("unexpected export:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteFlightsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFlightsTo(&buf, nil); err != nil {
		t.Fatalf("WriteFlightsTo failed: %v", err)
	}
	if buf.String() != "ID,Origin,Destination,Airline,Delay\n" {
		t.Errorf("expected header only, got %q", buf.String())
	}
}

func TestWriteFlightsBadPath(t *testing.T) {
	err := WriteFlights(filepath.Join(t.TempDir(), "missing", "out.csv"), nil)
	if err == nil {
		t.Error("expected error for unwritable path, got nil")
	}
}

func TestWriteShares(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shares.csv")
	shares := []model.Share[string]{
		{Category: "A", Percentage: 50},
		{Category: "B", Percentage: 100.0 / 3},
	}

	if err := WriteShares(path, shares); err != nil {
		t.Fatalf("WriteShares failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	want := "Category,Percentage\nA,50.00\nB,33.33\n"
	if string(data) != want {
		t.Errorf("expected %q, got %q", want, data)
	}
}

func TestWriteSharesHours(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSharesTo(&buf, []model.Share[int]{{Category: 0, Percentage: 0}, {Category: 24, Percentage: 12.5}})
	if err != nil {
		t.Fatalf("WriteSharesTo failed: %v", err)
	}
	if !strings.Contains(buf.String(), "24,12.50\n") {
		t.Errorf("expected hour 24 row, got %q", buf.String())
	}
}

func TestSuggestFilename(t *testing.T) {
	date, err := query.DateParams(4, 7, 2015)
	if err != nil {
		t.Fatalf("DateParams: %v", err)
	}
	airline, err := query.AirlineParams("  Delta Air Lines ")
	if err != nil {
		t.Fatalf("AirlineParams: %v", err)
	}
	airport, err := query.AirportParams("lax")
	if err != nil {
		t.Fatalf("AirportParams: %v", err)
	}

	tests := []struct {
		id   query.TemplateID
		p    query.Params
		want string
	}{
		{query.FlightByID, query.IDParams(42), "flight_42.csv"},
		{query.FlightsByDate, date, "flights_on_20150704.csv"},
		{query.DelayedByAirline, airline, "delayed_by_delta_air_lines.csv"},
		{query.DelayedByAirport, airport, "delayed_from_LAX.csv"},
		{query.AllFlights, query.NoParams(), "delayed_percentage_per_airline.csv"},
		{query.DepartureTimesAndDelays, query.NoParams(), "delayed_percentage_per_hour.csv"},
		{query.FlightByID, query.NoParams(), ""},
	}
	for _, tt := range tests {
		if got := SuggestFilename(tt.id, tt.p); got != tt.want {
			t.Errorf("SuggestFilename(%s): expected %q, got %q", tt.id, tt.want, got)
		}
	}
}

func TestEnsureCSVExtension(t *testing.T) {
	tests := map[string]string{
		"results":     "results.csv",
		"results.csv": "results.csv",
		"RESULTS.CSV": "RESULTS.CSV",
		"results.txt": "results.txt.csv",
	}
	for in, want := range tests {
		if got := EnsureCSVExtension(in); got != want {
			t.Errorf("EnsureCSVExtension(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestReadAirlines(t *testing.T) {
	path := writeTempCSV(t, "airlines.csv", airlinesCSV)

	airlines, err := ReadAirlines(path)
	if err != nil {
		t.Fatalf("ReadAirlines failed: %v", err)
	}
	if len(airlines) != 3 {
		t.Fatalf("expected 3 airlines, got %d", len(airlines))
	}

	want := model.Airline{ID: 3, Code: "NK", Name: "Spirit Air Lines"}
	if airlines[2] != want {
		t.Errorf("expected %+v, got %+v", want, airlines[2])
	}
	if airlines[0].ID != 1 {
		t.Errorf("expected ids to start at 1, got %d", airlines[0].ID)
	}
}

func TestReadAirlinesBadHeader(t *testing.T) {
	path := writeTempCSV(t, "bad.csv", "CODE,NAME\nUA,United\n")
	if _, err := ReadAirlines(path); err == nil {
		t.Error("expected error for bad header, got nil")
	}
}

func TestReadAirlinesMissingFile(t *testing.T) {
	if _, err := ReadAirlines("/nonexistent/airlines.csv"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestReadFlights(t *testing.T) {
	path := writeTempCSV(t, "flights.csv", flightsCSV)

	result, err := ReadFlights(path, testAirlineIDs, nil)
	if err != nil {
		t.Fatalf("ReadFlights failed: %v", err)
	}

	// ZZ is unknown and "x" is not an id
	if result.Count != 3 {
		t.Errorf("expected 3 flights, got %d", result.Count)
	}
	if result.Excluded != 2 {
		t.Errorf("expected 2 excluded, got %d", result.Excluded)
	}

	f := result.Flights[0]
	if f.ID != 1 || f.Year != 2015 || f.Month != 1 || f.Day != 1 {
		t.Errorf("unexpected identity fields: %+v", f)
	}
	if f.AirlineID != 1 || f.OriginAirport != "SFO" || f.DestinationAirport != "ORD" {
		t.Errorf("unexpected route fields: %+v", f)
	}
	if f.DepartureTime == nil || *f.DepartureTime != 935 {
		t.Errorf("expected departure time 935, got %v", f.DepartureTime)
	}
	if f.DepartureDelay == nil || *f.DepartureDelay != 25 {
		t.Errorf("expected departure delay 25, got %v", f.DepartureDelay)
	}
}

func TestReadFlightsNullCells(t *testing.T) {
	path := writeTempCSV(t, "flights.csv", flightsCSV)

	result, err := ReadFlights(path, testAirlineIDs, nil)
	if err != nil {
		t.Fatalf("ReadFlights failed: %v", err)
	}

	f := result.Flights[1]
	if f.AirlineID != 3 {
		t.Errorf("expected lower-case code to resolve to 3, got %d", f.AirlineID)
	}
	if f.DepartureTime != nil {
		t.Errorf("expected NULL departure time, got %d", *f.DepartureTime)
	}
	if f.DepartureDelay != nil {
		t.Errorf("expected NULL departure delay, got %d", *f.DepartureDelay)
	}
}

func TestReadFlightsNumericAirlineAndFloatTime(t *testing.T) {
	path := writeTempCSV(t, "flights.csv", flightsCSV)

	result, err := ReadFlights(path, testAirlineIDs, nil)
	if err != nil {
		t.Fatalf("ReadFlights failed: %v", err)
	}

	f := result.Flights[2]
	if f.AirlineID != 2 {
		t.Errorf("expected numeric airline id 2, got %d", f.AirlineID)
	}
	if f.DepartureTime == nil || *f.DepartureTime != 2400 {
		t.Errorf("expected departure time 2400, got %v", f.DepartureTime)
	}
	// negative delays are stored as-is; clamping happens on read
	if f.DepartureDelay == nil || *f.DepartureDelay != -4 {
		t.Errorf("expected departure delay -4, got %v", f.DepartureDelay)
	}
}

func TestReadFlightsMissingColumns(t *testing.T) {
	path := writeTempCSV(t, "flights.csv", "ID,YEAR,MONTH,DAY,AIRLINE\n1,2015,1,1,UA\n")

	_, err := ReadFlights(path, testAirlineIDs, nil)
	if err == nil {
		t.Fatal("expected error for missing columns, got nil")
	}
	if !strings.Contains(err.Error(), "DEPARTURE_DELAY") {
		t.Errorf("expected missing column in error, got %v", err)
	}
}

func TestReadFlightsProgress(t *testing.T) {
	var b strings.Builder
	b.WriteString("ID,YEAR,MONTH,DAY,AIRLINE,ORIGIN_AIRPORT,DESTINATION_AIRPORT,DEPARTURE_TIME,DEPARTURE_DELAY\n")
	for i := 1; i <= 25000; i++ {
		b.WriteString("1,2015,1,1,UA,SFO,ORD,935,0\n")
	}

	path := writeTempCSV(t, "big.csv", b.String())

	var calls int
	result, err := ReadFlights(path, testAirlineIDs, func(count int) {
		calls++
	})
	if err != nil {
		t.Fatalf("ReadFlights failed: %v", err)
	}

	if result.Count != 25000 {
		t.Errorf("expected 25000 flights, got %d", result.Count)
	}
	if calls != 2 { // called at 10000 and 20000
		t.Errorf("expected 2 progress calls, got %d", calls)
	}
}

func TestReadFlightsNullBytes(t *testing.T) {
	content := "ID,YEAR,MONTH,DAY,AIRLINE,ORIGIN_AIRPORT,DESTINATION_AIRPORT,DEPARTURE_TIME,DEPARTURE_DELAY\n" +
		"7,2015,1,1,UA,S\x00FO,ORD,935,0\n"

	path := writeTempCSV(t, "nulls.csv", content)

	result, err := ReadFlights(path, testAirlineIDs, nil)
	if err != nil {
		t.Fatalf("ReadFlights failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("expected 1 flight, got %d", result.Count)
	}

	// Null bytes should be stripped
	if result.Flights[0].OriginAirport != "SFO" {
		t.Errorf("expected 'SFO' (null stripped), got '%s'", result.Flights[0].OriginAirport)
	}
}

func TestReadFlightsShortRow(t *testing.T) {
	// Trailing nullable columns may be cut off entirely
	content := "ID,YEAR,MONTH,DAY,AIRLINE,ORIGIN_AIRPORT,DESTINATION_AIRPORT,DEPARTURE_TIME,DEPARTURE_DELAY\n" +
		"8,2015,1,1,UA,SFO,ORD\n"

	path := writeTempCSV(t, "short_row.csv", content)

	result, err := ReadFlights(path, testAirlineIDs, nil)
	if err != nil {
		t.Fatalf("ReadFlights failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("expected 1 flight, got %d", result.Count)
	}
	if result.Flights[0].DepartureTime != nil || result.Flights[0].DepartureDelay != nil {
		t.Errorf("expected NULL departure fields, got %+v", result.Flights[0])
	}
}

func TestResolveAirline(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"UA", 1, true},
		{" aa ", 2, true},
		{"17", 17, true},
		{"ZZ", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ResolveAirline(tt.in, testAirlineIDs)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ResolveAirline(%q): expected (%d, %v), got (%d, %v)", tt.in, tt.want, tt.wantOK, got, ok)
		}
	}
}

func TestOptionalInt(t *testing.T) {
	if v, ok := optionalInt(""); !ok || v != nil {
		t.Errorf("expected NULL for empty cell, got %v %v", v, ok)
	}
	if v, ok := optionalInt("12"); !ok || *v != 12 {
		t.Errorf("expected 12, got %v %v", v, ok)
	}
	if v, ok := optionalInt("5.0"); !ok || *v != *intPtr(5) {
		t.Errorf("expected 5, got %v %v", v, ok)
	}
	if _, ok := optionalInt("soon"); ok {
		t.Error("expected failure for non-numeric cell")
	}
}
