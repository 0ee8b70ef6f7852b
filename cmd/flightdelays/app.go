package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cdtdelta/flightdelays/internal/config"
	"github.com/cdtdelta/flightdelays/internal/csvparser"
	"github.com/cdtdelta/flightdelays/internal/database"
	"github.com/cdtdelta/flightdelays/internal/engine"
	"github.com/cdtdelta/flightdelays/internal/jsonlparser"
	"github.com/cdtdelta/flightdelays/internal/model"
	"github.com/cdtdelta/flightdelays/internal/query"
)

// App holds the open store and the engine for one CLI invocation.
type App struct {
	cfg    config.Config
	store  database.Store
	engine *engine.Engine
	out    io.Writer
	log    *slog.Logger
}

// NewApp creates an App writing results to out.
func NewApp(cfg config.Config, out io.Writer, log *slog.Logger) *App {
	return &App{cfg: cfg, out: out, log: log}
}

// -- Store Operations --

// Open opens the configured store. With create set the schema is created first.
func (a *App) Open(create bool) error {
	a.Close()

	var (
		store database.Store
		err   error
	)
	if create {
		store, err = database.CreateStore(a.cfg.Driver, a.cfg.DSN, nil)
	} else {
		store, err = database.OpenStore(a.cfg.Driver, a.cfg.DSN, nil)
	}
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	a.store = store
	a.engine = engine.New(store, engine.WithLogger(a.log))
	a.log.Debug("opened store", "driver", a.cfg.Driver, "path", store.Path())
	return nil
}

// Close closes the current store, if any.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
		a.engine = nil
	}
}

// DBInfo contains summary info about the loaded database.
type DBInfo struct {
	Driver      string
	Path        string
	FlightCount int64
}

// Info returns a summary of the open store.
func (a *App) Info() (*DBInfo, error) {
	count, err := a.store.CountFlights()
	if err != nil {
		return nil, err
	}
	return &DBInfo{Driver: a.cfg.Driver, Path: a.store.Path(), FlightCount: count}, nil
}

// -- Import --

// ImportRequest names the dataset files to load.
type ImportRequest struct {
	AirlinesPath string
	FlightsPath  string
}

// Import loads the airlines file and then the flights file, which may be
// CSV or JSONL (by extension).
func (a *App) Import(req ImportRequest) (*DBInfo, error) {
	airlines, err := csvparser.ReadAirlines(req.AirlinesPath)
	if err != nil {
		return nil, fmt.Errorf("reading airlines: %w", err)
	}
	if _, err := a.store.InsertAirlines(airlines); err != nil {
		return nil, fmt.Errorf("inserting airlines: %w", err)
	}
	a.log.Info("imported airlines", "count", len(airlines))

	ids := model.AirlineIDs(airlines)
	progress := func(phase string) func(int) {
		return func(count int) {
			a.log.Info("import progress", "phase", phase, "count", count)
		}
	}

	var (
		flights  []*model.FlightRow
		excluded int
	)
	if isJSONL(req.FlightsPath) {
		result, err := jsonlparser.ReadFlights(req.FlightsPath, ids, progress("reading"))
		if err != nil {
			return nil, fmt.Errorf("reading flights: %w", err)
		}
		flights, excluded = result.Flights, result.Excluded
	} else {
		result, err := csvparser.ReadFlights(req.FlightsPath, ids, progress("reading"))
		if err != nil {
			return nil, fmt.Errorf("reading flights: %w", err)
		}
		flights, excluded = result.Flights, result.Excluded
	}
	if excluded > 0 {
		a.log.Warn("skipped unreadable flights", "count", excluded)
	}

	total := len(flights)
	if _, err := a.store.InsertFlights(flights, progress("inserting")); err != nil {
		return nil, fmt.Errorf("inserting flights: %w", err)
	}
	a.log.Info("import complete", "flights", total)

	return a.Info()
}

func isJSONL(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".json", ".ndjson":
		return true
	}
	return false
}

// -- Query Operations --

// ExportOptions selects where lookup or rollup results are written.
// Suggested uses the default filename inside the configured export directory.
type ExportOptions struct {
	Path      string
	Suggested bool
}

func (o ExportOptions) target(cfg config.Config, id query.TemplateID, p query.Params) string {
	if o.Path != "" {
		return csvparser.EnsureCSVExtension(o.Path)
	}
	if o.Suggested {
		if name := csvparser.SuggestFilename(id, p); name != "" {
			return filepath.Join(cfg.ExportDir, name)
		}
	}
	return ""
}

// Lookup runs a lookup template, prints the flights and optionally exports them.
func (a *App) Lookup(ctx context.Context, id query.TemplateID, p query.Params, export ExportOptions) error {
	records, err := a.engine.Lookup(ctx, id, p)
	if err != nil {
		return err
	}

	printResults(a.out, records)
	if len(records) == 0 {
		return nil
	}

	if path := export.target(a.cfg, id, p); path != "" {
		if err := csvparser.WriteFlights(path, records); err != nil {
			return fmt.Errorf("exporting results: %w", err)
		}
		fmt.Fprintf(a.out, "Results saved to %s\n", path)
	}
	return nil
}

// AirlineRollup prints the delayed percentage per airline.
func (a *App) AirlineRollup(ctx context.Context, export ExportOptions) error {
	shares, err := a.engine.AirlineDelayShares(ctx)
	if err != nil {
		return err
	}
	printShares(a.out, "airline", shares)
	return exportShares(a, query.AllFlights, shares, export)
}

// HourRollup prints the delayed percentage per departure hour.
func (a *App) HourRollup(ctx context.Context, export ExportOptions) error {
	shares, err := a.engine.HourlyDelayShares(ctx)
	if err != nil {
		return err
	}
	printShares(a.out, "hour", shares)
	return exportShares(a, query.DepartureTimesAndDelays, shares, export)
}

func exportShares[K comparable](a *App, id query.TemplateID, shares []model.Share[K], export ExportOptions) error {
	path := export.target(a.cfg, id, query.NoParams())
	if path == "" {
		return nil
	}
	if err := csvparser.WriteShares(path, shares); err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}
	fmt.Fprintf(a.out, "Results saved to %s\n", path)
	return nil
}
