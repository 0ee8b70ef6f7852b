package csvparser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cdtdelta/flightdelays/internal/model"
	"github.com/cdtdelta/flightdelays/internal/query"
)

// Export header for lookup results.
var exportHeader = []string{"ID", "Origin", "Destination", "Airline", "Delay"}

// Export header for rollup results.
var sharesHeader = []string{"Category", "Percentage"}

// Header of the airlines dataset file. Column order matters.
var airlinesHeader = []string{"IATA_CODE", "AIRLINE"}

// Columns the flights dataset file must carry, in any order.
// Other columns are ignored.
var flightColumns = []string{
	"ID", "YEAR", "MONTH", "DAY", "AIRLINE",
	"ORIGIN_AIRPORT", "DESTINATION_AIRPORT", "DEPARTURE_TIME", "DEPARTURE_DELAY",
}

// FlightsResult contains the outcome of a flights CSV import.
type FlightsResult struct {
	Flights  []*model.FlightRow
	Count    int
	Excluded int
}

// WriteFlights writes lookup results to a CSV file.
func WriteFlights(path string, records []model.FlightRecord) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteFlightsTo(w, records)
	})
}

// WriteFlightsTo writes lookup results as CSV to w.
func WriteFlightsTo(w io.Writer, records []model.FlightRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.Origin,
			r.Destination,
			r.Airline,
			strconv.Itoa(r.Delay),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteShares writes rollup results to a CSV file. Percentages keep two decimals.
func WriteShares[K comparable](path string, shares []model.Share[K]) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteSharesTo(w, shares)
	})
}

// WriteSharesTo writes rollup results as CSV to w.
func WriteSharesTo[K comparable](w io.Writer, shares []model.Share[K]) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(sharesHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, s := range shares {
		row := []string{
			fmt.Sprint(s.Category),
			strconv.FormatFloat(s.Percentage, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SuggestFilename returns the default export filename for a query, or an
// empty string when there is none.
func SuggestFilename(id query.TemplateID, p query.Params) string {
	switch id {
	case query.FlightByID:
		if v, ok := p.Get(query.ParamID); ok {
			return fmt.Sprintf("flight_%v.csv", v)
		}
	case query.FlightsByDate:
		d, okD := p.Get(query.ParamDay)
		m, okM := p.Get(query.ParamMonth)
		y, okY := p.Get(query.ParamYear)
		if okD && okM && okY {
			return fmt.Sprintf("flights_on_%04d%02d%02d.csv", y, m, d)
		}
	case query.DelayedByAirline:
		if v, ok := p.Get(query.ParamAirline); ok {
			name := strings.Trim(fmt.Sprint(v), "%")
			name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
			return "delayed_by_" + name + ".csv"
		}
	case query.DelayedByAirport:
		if v, ok := p.Get(query.ParamIATA); ok {
			return "delayed_from_" + strings.ToUpper(fmt.Sprint(v)) + ".csv"
		}
	case query.AllFlights:
		return "delayed_percentage_per_airline.csv"
	case query.DepartureTimesAndDelays:
		return "delayed_percentage_per_hour.csv"
	}
	return ""
}

// EnsureCSVExtension appends ".csv" unless name already ends with it.
func EnsureCSVExtension(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return name
	}
	return name + ".csv"
}

// ReadAirlines reads the airlines dataset. Ids are assigned from 1 in file order.
func ReadAirlines(path string) ([]model.Airline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(newNullStripper(f))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if len(header) < len(airlinesHeader) {
		return nil, fmt.Errorf("header too short: got %d columns, expected at least %d", len(header), len(airlinesHeader))
	}
	for i, expected := range airlinesHeader {
		if strings.TrimSpace(header[i]) != expected {
			return nil, fmt.Errorf("header mismatch at column %d: expected '%s', got '%s'", i, expected, header[i])
		}
	}

	var airlines []model.Airline
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(airlines)+1, err)
		}

		airlines = append(airlines, model.Airline{
			ID:   int64(len(airlines) + 1),
			Code: strings.TrimSpace(safeIndex(row, 0)),
			Name: strings.TrimSpace(safeIndex(row, 1)),
		})
	}

	return airlines, nil
}

// ValidateFlightsHeader checks that a flights CSV carries every required
// column and returns each column's index.
func ValidateFlightsHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range flightColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

// ReadFlights reads the flights dataset. The AIRLINE column holds either an
// airline code, resolved through airlineIDs, or a numeric airline id.
// Rows with an unknown airline or a malformed number are excluded.
// An onProgress callback is called every 10,000 flights if non-nil.
func ReadFlights(path string, airlineIDs map[string]int64, onProgress func(count int)) (*FlightsResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(newNullStripper(f))
	reader.FieldsPerRecord = -1 // allow variable field counts

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	index, err := ValidateFlightsHeader(header)
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}

	result := &FlightsResult{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", result.Count+result.Excluded+1, err)
		}

		flight, ok := rowToFlight(row, index, airlineIDs)
		if !ok {
			result.Excluded++
			continue
		}

		result.Flights = append(result.Flights, flight)
		result.Count++

		if onProgress != nil && result.Count%10000 == 0 {
			onProgress(result.Count)
		}
	}

	return result, nil
}

// rowToFlight converts a flights CSV row, reporting false when a required
// value is missing or malformed.
func rowToFlight(row []string, index map[string]int, airlineIDs map[string]int64) (*model.FlightRow, bool) {
	cell := func(col string) string {
		return strings.TrimSpace(safeIndex(row, index[col]))
	}

	id, err := strconv.ParseInt(cell("ID"), 10, 64)
	if err != nil {
		return nil, false
	}
	year, err1 := strconv.Atoi(cell("YEAR"))
	month, err2 := strconv.Atoi(cell("MONTH"))
	day, err3 := strconv.Atoi(cell("DAY"))
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, false
	}

	airline, ok := ResolveAirline(cell("AIRLINE"), airlineIDs)
	if !ok {
		return nil, false
	}

	depTime, ok := optionalInt(cell("DEPARTURE_TIME"))
	if !ok {
		return nil, false
	}
	depDelay, ok := optionalInt(cell("DEPARTURE_DELAY"))
	if !ok {
		return nil, false
	}

	return &model.FlightRow{
		ID:                 id,
		Year:               year,
		Month:              month,
		Day:                day,
		AirlineID:          airline,
		OriginAirport:      cell("ORIGIN_AIRPORT"),
		DestinationAirport: cell("DESTINATION_AIRPORT"),
		DepartureTime:      depTime,
		DepartureDelay:     depDelay,
	}, true
}

// ResolveAirline maps an airline code or numeric id to an airline id.
func ResolveAirline(value string, airlineIDs map[string]int64) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if id, ok := airlineIDs[strings.ToUpper(value)]; ok {
		return id, true
	}
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return id, true
	}
	return 0, false
}

// optionalInt parses an integer cell; an empty cell is NULL. Values such as
// "935.0" are accepted and truncated.
func optionalInt(s string) (*int, bool) {
	if s == "" {
		return nil, true
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	v := int(f)
	return &v, true
}

// safeIndex returns the value at index i, or empty string if out of bounds.
func safeIndex(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// nullStripper wraps a reader and strips null bytes from the stream so
// encoding/csv does not choke on them.
type nullStripper struct {
	r io.Reader
}

func newNullStripper(r io.Reader) io.Reader {
	return &nullStripper{r: r}
}

func (ns *nullStripper) Read(p []byte) (int, error) {
	n, err := ns.r.Read(p)
	if n > 0 {
		// Replace null bytes in place
		cleaned := strings.ReplaceAll(string(p[:n]), "\x00", "")
		copy(p, cleaned)
		n = len(cleaned)
	}
	return n, err
}
