// Package engine runs catalog queries against a store and hands back
// normalized flight records or delay rollups.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdtdelta/flightdelays/internal/aggregate"
	"github.com/cdtdelta/flightdelays/internal/logging"
	"github.com/cdtdelta/flightdelays/internal/model"
	"github.com/cdtdelta/flightdelays/internal/normalize"
	"github.com/cdtdelta/flightdelays/internal/query"
)

// Executor runs one catalog template. database.Store satisfies it.
type Executor interface {
	Execute(ctx context.Context, id query.TemplateID, params query.Params) ([]model.RawRow, error)
}

// Engine answers flight lookups and delay rollups.
type Engine struct {
	store Executor
	log   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-query records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an Engine reading from store.
func New(store Executor, opts ...Option) *Engine {
	e := &Engine{store: store, log: logging.GetLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FlightByID returns the flight with the given id, if any.
func (e *Engine) FlightByID(ctx context.Context, id int64) ([]model.FlightRecord, error) {
	return e.Lookup(ctx, query.FlightByID, query.IDParams(id))
}

// FlightsByDate returns every flight on the given date.
func (e *Engine) FlightsByDate(ctx context.Context, day, month, year int) ([]model.FlightRecord, error) {
	p, err := query.DateParams(day, month, year)
	if err != nil {
		return nil, err
	}
	return e.Lookup(ctx, query.FlightsByDate, p)
}

// DelayedByAirline returns flights delayed by at least query.DelayThreshold
// minutes whose airline name contains airline, ignoring case.
func (e *Engine) DelayedByAirline(ctx context.Context, airline string) ([]model.FlightRecord, error) {
	p, err := query.AirlineParams(airline)
	if err != nil {
		return nil, err
	}
	return e.Lookup(ctx, query.DelayedByAirline, p)
}

// DelayedByAirport returns flights delayed by at least query.DelayThreshold
// minutes departing from the given IATA airport.
func (e *Engine) DelayedByAirport(ctx context.Context, iata string) ([]model.FlightRecord, error) {
	p, err := query.AirportParams(iata)
	if err != nil {
		return nil, err
	}
	return e.Lookup(ctx, query.DelayedByAirport, p)
}

// Lookup runs a lookup template and normalizes every row. A bad row aborts
// the whole batch; no partial result is returned.
func (e *Engine) Lookup(ctx context.Context, id query.TemplateID, p query.Params) ([]model.FlightRecord, error) {
	rows, err := e.run(ctx, id, p)
	if err != nil {
		return []model.FlightRecord{}, err
	}
	records, err := normalize.Flights(rows)
	if err != nil {
		e.log.Warn("discarding result", "template", id.String(), "error", err)
		return nil, fmt.Errorf("normalizing %s: %w", id, err)
	}
	return records, nil
}

// AirlineDelayShares returns the delayed percentage per airline, in the
// order airlines first appear in the store's rows.
func (e *Engine) AirlineDelayShares(ctx context.Context) ([]model.Share[string], error) {
	rows, err := e.run(ctx, query.AllFlights, query.NoParams())
	if err != nil {
		return []model.Share[string]{}, err
	}
	delays, err := normalize.AirlineDelays(rows)
	if err != nil {
		e.log.Warn("discarding rollup", "template", query.AllFlights.String(), "error", err)
		return nil, fmt.Errorf("normalizing %s: %w", query.AllFlights, err)
	}
	return aggregate.ByAirline(delays), nil
}

// HourlyDelayShares returns the delayed percentage for each departure hour
// 0 through 24.
func (e *Engine) HourlyDelayShares(ctx context.Context) ([]model.Share[int], error) {
	rows, err := e.run(ctx, query.DepartureTimesAndDelays, query.NoParams())
	if err != nil {
		return []model.Share[int]{}, err
	}
	delays, err := normalize.HourDelays(rows)
	if err != nil {
		e.log.Warn("discarding rollup", "template", query.DepartureTimesAndDelays.String(), "error", err)
		return nil, fmt.Errorf("normalizing %s: %w", query.DepartureTimesAndDelays, err)
	}
	return aggregate.ByHour(delays), nil
}

func (e *Engine) run(ctx context.Context, id query.TemplateID, p query.Params) ([]model.RawRow, error) {
	start := time.Now()
	rows, err := e.store.Execute(ctx, id, p)
	if err != nil {
		e.log.Error("query failed", "template", id.String(), "error", err)
		return nil, err
	}
	e.log.Debug("query finished", "template", id.String(), "rows", len(rows), "elapsed", time.Since(start))
	return rows, nil
}
