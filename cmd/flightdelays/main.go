// Command flightdelays answers flight lookups and delay rollups against a
// SQLite or PostgreSQL flights database.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdtdelta/flightdelays/internal/config"
	"github.com/cdtdelta/flightdelays/internal/logging"
	"github.com/cdtdelta/flightdelays/internal/query"
)

var version = "dev"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	driver     string
	dsn        string
	logLevel   string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	var app *App

	root := &cobra.Command{
		Use:          "flightdelays",
		Short:        "Query flight delays",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := logging.Init(cfg.Logging()); err != nil {
				return fmt.Errorf("initializing logging: %w", err)
			}
			app = NewApp(cfg, out, logging.GetLogger())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app != nil {
				app.Close()
			}
			return logging.Close()
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.driver, "driver", "", "database driver (sqlite or postgres)")
	flags.StringVar(&opts.dsn, "dsn", "", "database file path or connection string")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")

	appFn := func() *App { return app }
	root.AddCommand(
		newFlightCmd(appFn),
		newDateCmd(appFn),
		newAirlineCmd(appFn),
		newAirportCmd(appFn),
		newRollupCmd(appFn),
		newImportCmd(appFn),
		newInfoCmd(appFn),
	)
	return root
}

// loadConfig reads the config file and lets explicit flags win over it.
func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.driver != "" {
		driver := strings.ToLower(strings.TrimSpace(opts.driver))
		// a DSN meant for another driver is useless
		if driver != cfg.Driver {
			cfg.DSN = ""
			if driver == config.DefaultDriver {
				cfg.DSN = config.DefaultDSN
			}
		}
		cfg.Driver = driver
	}
	if opts.dsn != "" {
		cfg.DSN = opts.dsn
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func addExportFlags(cmd *cobra.Command, export *ExportOptions, suggested bool) {
	cmd.Flags().StringVar(&export.Path, "csv", "", "export results to this CSV file")
	if suggested {
		cmd.Flags().BoolVar(&export.Suggested, "csv-suggested", false, "export results using the suggested filename")
	}
}

func newFlightCmd(app func() *App) *cobra.Command {
	var export ExportOptions
	cmd := &cobra.Command{
		Use:   "flight <id>",
		Short: "Show the flight with the given ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("flight ID must be a number: %q", args[0])
			}
			return runLookup(cmd, app(), query.FlightByID, query.IDParams(id), export)
		},
	}
	addExportFlags(cmd, &export, true)
	return cmd
}

func newDateCmd(app func() *App) *cobra.Command {
	var export ExportOptions
	cmd := &cobra.Command{
		Use:   "date <DD/MM/YYYY>",
		Short: "Show all flights on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := query.ParseDate(args[0])
			if err != nil {
				return err
			}
			return runLookup(cmd, app(), query.FlightsByDate, p, export)
		},
	}
	addExportFlags(cmd, &export, true)
	return cmd
}

func newAirlineCmd(app func() *App) *cobra.Command {
	var export ExportOptions
	cmd := &cobra.Command{
		Use:   "airline <name>",
		Short: "Show delayed flights of airlines whose name contains <name>",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := query.AirlineParams(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return runLookup(cmd, app(), query.DelayedByAirline, p, export)
		},
	}
	addExportFlags(cmd, &export, true)
	return cmd
}

func newAirportCmd(app func() *App) *cobra.Command {
	var export ExportOptions
	cmd := &cobra.Command{
		Use:   "airport <IATA>",
		Short: "Show delayed flights departing from an airport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := query.AirportParams(args[0])
			if err != nil {
				return err
			}
			return runLookup(cmd, app(), query.DelayedByAirport, p, export)
		},
	}
	addExportFlags(cmd, &export, true)
	return cmd
}

func runLookup(cmd *cobra.Command, a *App, id query.TemplateID, p query.Params, export ExportOptions) error {
	if err := a.Open(false); err != nil {
		return err
	}
	return a.Lookup(cmd.Context(), id, p, export)
}

func newRollupCmd(app func() *App) *cobra.Command {
	var export ExportOptions
	cmd := &cobra.Command{
		Use:       "rollup <airline|hour>",
		Short:     "Show the delayed percentage per airline or per departure hour",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"airline", "hour"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.Open(false); err != nil {
				return err
			}
			if args[0] == "airline" {
				return a.AirlineRollup(cmd.Context(), export)
			}
			return a.HourRollup(cmd.Context(), export)
		},
	}
	addExportFlags(cmd, &export, true)
	return cmd
}

func newImportCmd(app func() *App) *cobra.Command {
	var (
		req    ImportRequest
		create bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load airlines and flights datasets into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.Open(create); err != nil {
				return err
			}
			info, err := a.Import(req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported into %s: %d flights\n", info.Path, info.FlightCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.AirlinesPath, "airlines", "", "airlines CSV file (IATA_CODE,AIRLINE)")
	cmd.Flags().StringVar(&req.FlightsPath, "flights", "", "flights CSV or JSONL file")
	cmd.Flags().BoolVar(&create, "create", false, "create the schema before importing")
	cmd.MarkFlagRequired("airlines")
	cmd.MarkFlagRequired("flights")
	return cmd
}

func newInfoCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show a summary of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.Open(false); err != nil {
				return err
			}
			info, err := a.Info()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Driver: %s\nDatabase: %s\nFlights: %d\n", info.Driver, info.Path, info.FlightCount)
			return nil
		},
	}
}
