// Package pipeline runs the lookup stages: resolve the location, find a
// station, fetch its observations and reduce them to a verdict.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/isitfrozen/internal/geocoding"
	"github.com/ngmaloney/isitfrozen/internal/models"
	"github.com/ngmaloney/isitfrozen/internal/nws"
	"github.com/ngmaloney/isitfrozen/internal/verdict"
)

// Stage names a step of the lookup
type Stage string

const (
	StageResolve      Stage = "resolve"
	StageStation      Stage = "station"
	StageObservations Stage = "observations"
)

// StageError tags a failure with the stage that produced it
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ZipResolver converts a raw ZIP selection to a location
type ZipResolver interface {
	ResolveZip(ctx context.Context, raw string) (*geocoding.Location, error)
}

// PreferenceWriter records successful selections
type PreferenceWriter interface {
	SaveZip(ctx context.Context, zip string) error
	SaveState(ctx context.Context, state string) error
	SaveStation(ctx context.Context, station string) error
}

// Outcome is the result of a complete lookup
type Outcome struct {
	Location *geocoding.Location // nil for state lookups
	Station  models.Station
	Result   verdict.Result
}

// Pipeline wires the lookup stages together
type Pipeline struct {
	resolver ZipResolver
	finder   nws.StationFinder
	fetcher  nws.ObservationFetcher
	prefs    PreferenceWriter
	clock    clockwork.Clock
	days     int
	logger   *slog.Logger
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithClock sets the time source used for the observation window
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithWindowDays sets how many days of observations are requested
func WithWindowDays(days int) Option {
	return func(p *Pipeline) { p.days = days }
}

// WithLogger sets the logger failures are reported to
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a pipeline. finder and fetcher are usually the same *nws.Client.
func New(resolver ZipResolver, finder nws.StationFinder, fetcher nws.ObservationFetcher, prefs PreferenceWriter, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: resolver,
		finder:   finder,
		fetcher:  fetcher,
		prefs:    prefs,
		clock:    clockwork.NewRealClock(),
		days:     5,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Window returns [now - days, now] using the given clock
func Window(clock clockwork.Clock, days int) (start, end time.Time) {
	end = clock.Now()
	start = end.AddDate(0, 0, -days)
	return start, end
}

// ResolveZip resolves the ZIP and stores it as the saved selection
func (p *Pipeline) ResolveZip(ctx context.Context, raw string) (*geocoding.Location, error) {
	loc, err := p.resolver.ResolveZip(ctx, raw)
	if err != nil {
		return nil, p.fail(StageResolve, err)
	}
	if err := p.prefs.SaveZip(ctx, loc.Zipcode); err != nil {
		p.logger.Error("saving zip preference", "zip", loc.Zipcode, "error", err)
	}
	return loc, nil
}

// FindStation returns the first observation station for the location
func (p *Pipeline) FindStation(ctx context.Context, loc *geocoding.Location) (*models.Station, error) {
	station, err := p.finder.FindNearestStation(ctx, loc.Coordinates())
	if err != nil {
		return nil, p.fail(StageStation, err)
	}
	p.logger.Debug("station found", "coordinates", loc.Coordinates(), "station", station.Identifier)
	return station, nil
}

// SelectState validates the state, stores it (clearing any saved station)
// and returns its stations sorted by name.
func (p *Pipeline) SelectState(ctx context.Context, raw string) (string, []models.Station, error) {
	state, err := geocoding.NormalizeState(raw)
	if err != nil {
		return "", nil, p.fail(StageResolve, err)
	}
	if err := p.prefs.SaveState(ctx, state); err != nil {
		p.logger.Error("saving state preference", "state", state, "error", err)
	}

	stations, err := p.StationsForState(ctx, state)
	if err != nil {
		return state, nil, err
	}
	return state, stations, nil
}

// StationsForState lists a state's stations without touching saved preferences
func (p *Pipeline) StationsForState(ctx context.Context, state string) ([]models.Station, error) {
	stations, err := p.finder.StationsByState(ctx, state)
	if err != nil {
		return nil, p.fail(StageStation, err)
	}
	return stations, nil
}

// SelectStation stores the station the user picked
func (p *Pipeline) SelectStation(ctx context.Context, stationID string) error {
	if stationID == "" {
		return p.fail(StageStation, geocoding.ErrEmptyInput)
	}
	if err := p.prefs.SaveStation(ctx, stationID); err != nil {
		p.logger.Error("saving station preference", "station", stationID, "error", err)
	}
	return nil
}

// FetchVerdict fetches the station's recent observations and computes the verdict
func (p *Pipeline) FetchVerdict(ctx context.Context, stationID string) (verdict.Result, error) {
	start, end := Window(p.clock, p.days)

	observations, err := p.fetcher.Observations(ctx, stationID, start, end)
	if err != nil {
		return verdict.Result{}, p.fail(StageObservations, err)
	}

	result := verdict.Compute(observations)
	p.logger.Info("verdict computed",
		"station", stationID,
		"observations", len(observations),
		"valid", len(result.Readings),
		"verdict", result.Verdict.String())
	return result, nil
}

// CheckZip runs every stage for a ZIP code
func (p *Pipeline) CheckZip(ctx context.Context, raw string) (*Outcome, error) {
	loc, err := p.ResolveZip(ctx, raw)
	if err != nil {
		return nil, err
	}
	station, err := p.FindStation(ctx, loc)
	if err != nil {
		return nil, err
	}
	result, err := p.FetchVerdict(ctx, station.Identifier)
	if err != nil {
		return nil, err
	}
	return &Outcome{Location: loc, Station: *station, Result: result}, nil
}

// CheckStation fetches the verdict for a known station
func (p *Pipeline) CheckStation(ctx context.Context, stationID string) (*Outcome, error) {
	result, err := p.FetchVerdict(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return &Outcome{Station: models.Station{Identifier: stationID}, Result: result}, nil
}

// fail logs err at the level its kind calls for and wraps it in a StageError
func (p *Pipeline) fail(stage Stage, err error) error {
	var apiErr *nws.APIError
	switch {
	case errors.As(err, &apiErr):
		p.logger.Error("bad response", "stage", stage, "endpoint", apiErr.Endpoint, "status", apiErr.StatusCode, "body", apiErr.Body)
	case errors.Is(err, geocoding.ErrEmptyInput),
		errors.Is(err, geocoding.ErrUnknownZip),
		errors.Is(err, geocoding.ErrUnknownState),
		errors.Is(err, nws.ErrMissingField):
		p.logger.Warn("lookup aborted", "stage", stage, "reason", err)
	case errors.Is(err, context.Canceled):
		p.logger.Debug("lookup canceled", "stage", stage)
	default:
		p.logger.Error("lookup failed", "stage", stage, "error", err)
	}
	return &StageError{Stage: stage, Err: err}
}
