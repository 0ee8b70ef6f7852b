package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Parameter names used by the catalog templates.
const (
	ParamID      = "id"
	ParamDay     = "day"
	ParamMonth   = "month"
	ParamYear    = "year"
	ParamAirline = "airline"
	ParamIATA    = "iata"
)

// IATALength is the length of an airport code.
const IATALength = 3

// DateLayout is the textual date form accepted by ParseDate (DD/MM/YYYY).
// Single-digit days and months are accepted too.
const DateLayout = "2/1/2006"

// ErrInvalidParam is returned when a parameter value fails shape validation.
var ErrInvalidParam = errors.New("invalid query parameter")

// Params is an immutable set of named parameter values for one template.
// Build it with one of the constructors; the zero value binds no parameters.
type Params struct {
	values map[string]interface{}
}

// NoParams returns an empty parameter set for templates that take none.
func NoParams() Params {
	return Params{}
}

// IDParams binds a flight id.
func IDParams(id int64) Params {
	return Params{values: map[string]interface{}{ParamID: id}}
}

// DateParams binds a calendar date. The three values must form a real date.
func DateParams(day, month, year int) (Params, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return Params{}, fmt.Errorf("%w: %02d/%02d/%04d is not a calendar date", ErrInvalidParam, day, month, year)
	}
	return Params{values: map[string]interface{}{
		ParamDay:   day,
		ParamMonth: month,
		ParamYear:  year,
	}}, nil
}

// ParseDate builds date parameters from a DD/MM/YYYY string.
func ParseDate(s string) (Params, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Params{}, fmt.Errorf("%w: expected DD/MM/YYYY: %v", ErrInvalidParam, err)
	}
	return DateParams(t.Day(), int(t.Month()), t.Year())
}

// AirlineParams binds an airline name fragment for a substring match.
// The stored value carries the surrounding wildcards.
func AirlineParams(name string) (Params, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Params{}, fmt.Errorf("%w: airline name is empty", ErrInvalidParam)
	}
	return Params{values: map[string]interface{}{ParamAirline: "%" + name + "%"}}, nil
}

// AirportParams binds an origin airport code. The code must be exactly three
// letters; it is uppercased before binding.
func AirportParams(iata string) (Params, error) {
	code, err := NormalizeIATA(iata)
	if err != nil {
		return Params{}, err
	}
	return Params{values: map[string]interface{}{ParamIATA: code}}, nil
}

// NormalizeIATA trims and uppercases an airport code, rejecting anything that
// is not exactly three ASCII letters.
func NormalizeIATA(iata string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(iata))
	if len(code) != IATALength {
		return "", fmt.Errorf("%w: IATA code %q must be %d letters", ErrInvalidParam, iata, IATALength)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: IATA code %q must be alphabetic", ErrInvalidParam, iata)
		}
	}
	return code, nil
}

// Get returns the value bound under name.
func (p Params) Get(name string) (interface{}, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Names returns the bound parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p.values))
	for n := range p.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bound parameters.
func (p Params) Len() int {
	return len(p.values)
}
