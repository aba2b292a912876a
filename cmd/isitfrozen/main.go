package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/isitfrozen/internal/config"
	"github.com/ngmaloney/isitfrozen/internal/database"
	"github.com/ngmaloney/isitfrozen/internal/geocoding"
	"github.com/ngmaloney/isitfrozen/internal/logging"
	"github.com/ngmaloney/isitfrozen/internal/nws"
	"github.com/ngmaloney/isitfrozen/internal/pipeline"
	"github.com/ngmaloney/isitfrozen/internal/preferences"
	"github.com/ngmaloney/isitfrozen/internal/ui"
	"github.com/ngmaloney/isitfrozen/internal/verdict"
)

func main() {
	zip := flag.String("zip", "", "ZIP code to check on startup (e.g., 10001)")
	state := flag.String("state", "", "Two-letter state code to pick stations from (e.g., MN)")
	station := flag.String("station", "", "Station identifier to check directly (requires --state unless --once is set)")
	mode := flag.String("mode", "", "Selection mode to start in: zip or state")
	configFile := flag.String("config", "", "Path to a config file (defaults to .env if present)")
	once := flag.Bool("once", false, "Print the verdict and exit instead of starting the terminal UI")
	flag.Parse()

	if *mode != "" && *mode != "zip" && *mode != "state" {
		fmt.Println("Error: --mode must be zip or state.")
		os.Exit(1)
	}

	if err := run(*configFile, *zip, *state, *station, *mode, *once); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, zip, state, station, mode string, once bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, closer, err := logging.Open(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := preferences.NewStore(db)
	if err != nil {
		return err
	}

	geocoder, err := geocoding.NewGeocoder(db,
		geocoding.WithDownload(cfg.ZipcodeURL, &http.Client{Timeout: cfg.HTTPTimeout}),
		geocoding.WithLogger(logger))
	if err != nil {
		return err
	}

	client := nws.NewClient(cfg.APIBaseURL, cfg.UserAgent, cfg.HTTPTimeout)
	p := pipeline.New(geocoder, client, client, store,
		pipeline.WithWindowDays(cfg.ObservationDays),
		pipeline.WithLogger(logger))

	if state != "" {
		if state, err = geocoding.NormalizeState(state); err != nil {
			return fmt.Errorf("--state: %w", err)
		}
	}

	if once {
		return checkOnce(p, cfg.HTTPTimeout, zip, station, os.Stdout)
	}

	if station != "" && state == "" {
		return fmt.Errorf("--station requires --state to list the state's stations")
	}

	opts, err := initialSelection(store, zip, state, station, mode)
	if err != nil {
		return err
	}
	opts.Lookup = p
	opts.TickInterval = cfg.TickInterval
	opts.Timeout = cfg.HTTPTimeout
	opts.Logger = logger

	logger.Info("starting", "mode", opts.Mode, "zip", opts.Zip, "state", opts.State, "station", opts.Station)

	prog := tea.NewProgram(ui.NewModel(opts), tea.WithAltScreen())
	_, err = prog.Run()
	return err
}

// initialSelection merges command line choices with saved preferences.
// Flags win; a state given on the command line is saved like a UI selection.
func initialSelection(store *preferences.Store, zip, state, station, mode string) (ui.Options, error) {
	ctx := context.Background()

	if state != "" {
		if err := store.SaveState(ctx, state); err != nil {
			return ui.Options{}, err
		}
		if station != "" {
			if err := store.SaveStation(ctx, station); err != nil {
				return ui.Options{}, err
			}
		}
	}

	saved, err := store.Load(ctx)
	if err != nil {
		return ui.Options{}, err
	}

	opts := ui.Options{Zip: saved.Zip, State: saved.State, Station: saved.Station}
	if zip != "" {
		opts.Zip = zip
	}

	switch {
	case mode == "state":
		opts.Mode = ui.ModeState
	case mode == "zip":
		opts.Mode = ui.ModeZip
	case state != "":
		opts.Mode = ui.ModeState
	case zip == "" && saved.Zip == "" && saved.State != "":
		opts.Mode = ui.ModeState
	}

	return opts, nil
}

// checkOnce runs a single lookup and prints the result
func checkOnce(p *pipeline.Pipeline, timeout time.Duration, zip, station string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*timeout)
	defer cancel()

	var (
		outcome *pipeline.Outcome
		err     error
	)
	switch {
	case station != "":
		outcome, err = p.CheckStation(ctx, station)
	case zip != "":
		outcome, err = p.CheckZip(ctx, zip)
	default:
		return fmt.Errorf("--once requires --zip or --station")
	}
	if err != nil {
		return err
	}

	where := outcome.Station.Identifier
	if outcome.Location != nil {
		where = fmt.Sprintf("%s (%s)", outcome.Location.Name(), where)
	}
	fmt.Fprintf(w, "Is it frozen at %s? %s\n", where, outcome.Result.Verdict)

	readings := verdict.FormatReadings(outcome.Result.Readings, time.Local)
	if len(readings) == 0 {
		fmt.Fprintf(w, "  %s\n", verdict.NoObservationsText)
		return nil
	}
	fmt.Fprintln(w, "  "+strings.Join(readings, "\n  "))
	return nil
}
