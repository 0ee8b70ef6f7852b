package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DelayThreshold is the minimum departure delay, in minutes, for a flight to
// count as delayed by the airline and airport lookups.
const DelayThreshold = 20

// TemplateID identifies one entry of the query catalog.
type TemplateID int

const (
	FlightByID TemplateID = iota
	FlightsByDate
	DelayedByAirline
	DelayedByAirport
	AllFlights
	DepartureTimesAndDelays
)

var templateNames = map[TemplateID]string{
	FlightByID:              "FlightById",
	FlightsByDate:           "FlightsByDate",
	DelayedByAirline:        "DelayedByAirline",
	DelayedByAirport:        "DelayedByAirport",
	AllFlights:              "AllFlights",
	DepartureTimesAndDelays: "DepartureTimesAndDelays",
}

func (id TemplateID) String() string {
	if name, ok := templateNames[id]; ok {
		return name
	}
	return fmt.Sprintf("TemplateID(%d)", int(id))
}

// Kind tells whether a template's rows are shown directly or folded into a rollup.
type Kind int

const (
	Lookup Kind = iota
	Rollup
)

var (
	// ErrUnknownTemplate is returned when a catalog has no entry for an id.
	ErrUnknownTemplate = errors.New("unknown query template")

	// ErrParamMismatch is returned when bound parameters do not match the
	// names a template declares.
	ErrParamMismatch = errors.New("parameters do not match template")
)

// Template is one named, parameterized query definition.
// Params lists the parameter names in the order their placeholders appear.
type Template struct {
	ID     TemplateID
	Kind   Kind
	Params []string
	render func(d QueryDialect) string
}

// Name returns the template's catalog name.
func (t Template) Name() string {
	return t.ID.String()
}

// SQL renders the template text for the given dialect. Filter values never
// appear in the text; they are supplied separately by Bind.
// A template built outside this package has no text and renders as "".
func (t Template) SQL(d QueryDialect) string {
	if t.render == nil {
		return ""
	}
	if d == nil {
		d = DefaultDialect
	}
	return t.render(d)
}

// Bind returns the positional arguments for p in the template's parameter order.
// Missing or unexpected names are rejected.
func (t Template) Bind(p Params) ([]interface{}, error) {
	if p.Len() != len(t.Params) {
		return nil, fmt.Errorf("%w: %s expects %v, got %v", ErrParamMismatch, t.Name(), t.Params, p.Names())
	}
	args := make([]interface{}, 0, len(t.Params))
	for _, name := range t.Params {
		v, ok := p.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s is missing %q", ErrParamMismatch, t.Name(), name)
		}
		args = append(args, v)
	}
	return args, nil
}

// Catalog is an immutable set of templates keyed by id.
type Catalog struct {
	templates map[TemplateID]Template
}

// NewCatalog builds a catalog from the given templates. Later entries with
// the same id replace earlier ones.
func NewCatalog(templates ...Template) *Catalog {
	c := &Catalog{templates: make(map[TemplateID]Template, len(templates))}
	for _, t := range templates {
		c.templates[t.ID] = t
	}
	return c
}

// DefaultCatalog returns the six flight query templates.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Template{ID: FlightByID, Kind: Lookup, Params: []string{ParamID}, render: flightByIDSQL},
		Template{ID: FlightsByDate, Kind: Lookup, Params: []string{ParamDay, ParamMonth, ParamYear}, render: flightsByDateSQL},
		Template{ID: DelayedByAirline, Kind: Lookup, Params: []string{ParamAirline}, render: delayedByAirlineSQL},
		Template{ID: DelayedByAirport, Kind: Lookup, Params: []string{ParamIATA}, render: delayedByAirportSQL},
		Template{ID: AllFlights, Kind: Rollup, render: allFlightsSQL},
		Template{ID: DepartureTimesAndDelays, Kind: Rollup, render: departureTimesSQL},
	)
}

// Lookup returns the template registered under id.
func (c *Catalog) Lookup(id TemplateID) (Template, error) {
	t, ok := c.templates[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return t, nil
}

// IDs returns the registered template ids in ascending order.
func (c *Catalog) IDs() []TemplateID {
	ids := make([]TemplateID, 0, len(c.templates))
	for id := range c.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// flightSelect is the projection shared by every lookup template.
const flightSelect = "SELECT f.id AS id, f.origin_airport AS origin, " +
	"f.destination_airport AS destination, a.airline AS airline, " +
	"f.departure_delay AS delay " +
	"FROM flights f JOIN airlines a ON f.airline = a.id"

func delayedFilter() string {
	return fmt.Sprintf("f.departure_delay IS NOT NULL AND f.departure_delay >= %d", DelayThreshold)
}

func flightByIDSQL(d QueryDialect) string {
	return flightSelect + " WHERE f.id = " + d.Placeholder(1)
}

func flightsByDateSQL(d QueryDialect) string {
	return flightSelect + " WHERE " + strings.Join([]string{
		"f.day = " + d.Placeholder(1),
		"f.month = " + d.Placeholder(2),
		"f.year = " + d.Placeholder(3),
	}, " AND ") + " ORDER BY f.id"
}

func delayedByAirlineSQL(d QueryDialect) string {
	return flightSelect + " WHERE a.airline " + d.CaseInsensitiveLike() + " " + d.Placeholder(1) +
		" AND " + delayedFilter() + " ORDER BY f.id"
}

func delayedByAirportSQL(d QueryDialect) string {
	return flightSelect + " WHERE f.origin_airport = " + d.Placeholder(1) +
		" AND " + delayedFilter() + " ORDER BY f.id"
}

func allFlightsSQL(d QueryDialect) string {
	return "SELECT a.airline AS airline, f.departure_delay AS delay " +
		"FROM flights f JOIN airlines a ON f.airline = a.id"
}

// departureTimesSQL truncates the HHMM clock value to its hour, so 2400 stays 24.
func departureTimesSQL(d QueryDialect) string {
	return "SELECT CAST(departure_time / 100 AS INTEGER) AS hour, departure_delay AS delay " +
		"FROM flights WHERE departure_time IS NOT NULL"
}
