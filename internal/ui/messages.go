package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ngmaloney/isitfrozen/internal/geocoding"
	"github.com/ngmaloney/isitfrozen/internal/models"
	"github.com/ngmaloney/isitfrozen/internal/pipeline"
	"github.com/ngmaloney/isitfrozen/internal/verdict"
)

// Lookup is the set of pipeline stages the UI drives
type Lookup interface {
	ResolveZip(ctx context.Context, raw string) (*geocoding.Location, error)
	FindStation(ctx context.Context, loc *geocoding.Location) (*models.Station, error)
	SelectState(ctx context.Context, raw string) (string, []models.Station, error)
	StationsForState(ctx context.Context, state string) ([]models.Station, error)
	SelectStation(ctx context.Context, stationID string) error
	FetchVerdict(ctx context.Context, stationID string) (verdict.Result, error)
}

// Message types for async operations. Each carries the token of the lookup
// that produced it; messages from superseded lookups are dropped.

// zipResolvedMsg is sent when the ZIP code has been looked up
type zipResolvedMsg struct {
	token    pipeline.Token
	location *geocoding.Location
	err      error
}

// stationFoundMsg is sent when a station has been found or picked
type stationFoundMsg struct {
	token    pipeline.Token
	station  *models.Station
	location string // Display name of the resolved ZIP, empty for picked stations
	err      error
}

// stationsLoadedMsg is sent when a state's station list has been fetched
type stationsLoadedMsg struct {
	token    pipeline.Token
	state    string
	stations []models.Station
	restore  string // Station to re-select and check once loaded
	err      error
}

// verdictMsg is sent when observations have been fetched and reduced
type verdictMsg struct {
	token  pipeline.Token
	result verdict.Result
	err    error
}

// tickMsg grows the loading ellipsis
type tickMsg struct {
	token pipeline.Token
}

// resolveZip looks up the ZIP code in the background
func resolveZip(l Lookup, token pipeline.Token, raw string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		loc, err := l.ResolveZip(ctx, raw)
		return zipResolvedMsg{token: token, location: loc, err: err}
	}
}

// findStation finds the nearest observation station for a location
func findStation(l Lookup, token pipeline.Token, loc *geocoding.Location, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		station, err := l.FindStation(ctx, loc)
		return stationFoundMsg{token: token, station: station, location: loc.Name(), err: err}
	}
}

// selectState saves the state and fetches its stations
func selectState(l Lookup, token pipeline.Token, code string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		state, stations, err := l.SelectState(ctx, code)
		return stationsLoadedMsg{token: token, state: state, stations: stations, err: err}
	}
}

// restoreStations fetches a saved state's stations without clearing the saved station
func restoreStations(l Lookup, token pipeline.Token, state, station string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		stations, err := l.StationsForState(ctx, state)
		return stationsLoadedMsg{token: token, state: state, stations: stations, restore: station, err: err}
	}
}

// selectStation saves the picked station
func selectStation(l Lookup, token pipeline.Token, station models.Station, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := l.SelectStation(ctx, station.Identifier); err != nil {
			return stationFoundMsg{token: token, err: err}
		}
		return stationFoundMsg{token: token, station: &station}
	}
}

// fetchVerdict fetches observations for a station and computes the verdict
func fetchVerdict(l Lookup, token pipeline.Token, stationID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := l.FetchVerdict(ctx, stationID)
		return verdictMsg{token: token, result: result, err: err}
	}
}

// tick schedules the next ellipsis step
func tick(token pipeline.Token, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{token: token}
	})
}
