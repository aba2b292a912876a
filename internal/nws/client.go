// Package nws is a client for the api.weather.gov station and observation endpoints
package nws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ngmaloney/isitfrozen/internal/models"
)

// ErrMissingField is returned when a response lacks a field the lookup depends on
var ErrMissingField = errors.New("missing field in response")

// APIError is returned for non-success HTTP responses
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// StationFinder defines the interface for resolving observation stations
type StationFinder interface {
	// FindNearestStation returns the first observation station for "lat,long" coordinates
	FindNearestStation(ctx context.Context, coordinates string) (*models.Station, error)

	// StationsByState returns every station in a state, sorted by name
	StationsByState(ctx context.Context, state string) ([]models.Station, error)
}

// ObservationFetcher defines the interface for fetching station observations
type ObservationFetcher interface {
	// Observations retrieves observations recorded between start and end
	Observations(ctx context.Context, stationID string, start, end time.Time) ([]models.Observation, error)
}
