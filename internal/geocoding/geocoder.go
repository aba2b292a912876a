package geocoding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrEmptyInput is returned when the selection is blank
	ErrEmptyInput = errors.New("no location selected")
	// ErrUnknownZip is returned for ZIP codes missing from the table
	ErrUnknownZip = errors.New("unknown zip code")
	// ErrUnknownState is returned for codes that are not a US state or territory
	ErrUnknownState = errors.New("unknown state code")
)

// Location represents a geocoded ZIP code
type Location struct {
	Zipcode   string
	City      string
	State     string
	Latitude  float64
	Longitude float64
}

// Coordinates formats the location as "lat,long" for the points endpoint,
// using the shortest decimal form of each value (e.g. "40.75,-73.99").
func (l Location) Coordinates() string {
	return strconv.FormatFloat(l.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(l.Longitude, 'f', -1, 64)
}

// Name returns a display name like "New York, NY 10001"
func (l Location) Name() string {
	return fmt.Sprintf("%s, %s %s", l.City, l.State, l.Zipcode)
}

// Geocoder converts ZIP codes to coordinates using the local database
type Geocoder struct {
	db *sql.DB
}

// Option customizes how the zipcode table is provisioned
type Option func(*Source)

// WithDownload downloads the full zipcode table from url using client
func WithDownload(url string, client *http.Client) Option {
	return func(s *Source) {
		s.URL = url
		s.Client = client
	}
}

// WithLogger sets the logger provisioning progress is reported to
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) { s.Logger = l }
}

// NewGeocoder provisions the zipcode table on db if needed and returns a
// geocoder. Without WithDownload only the embedded table is available.
func NewGeocoder(db *sql.DB, opts ...Option) (*Geocoder, error) {
	var src Source
	for _, opt := range opts {
		opt(&src)
	}

	if err := ProvisionZipcodeTable(context.Background(), db, src); err != nil {
		return nil, fmt.Errorf("provisioning zipcodes: %w", err)
	}
	return &Geocoder{db: db}, nil
}

// ResolveZip trims the input and looks it up in the zipcode table
func (g *Geocoder) ResolveZip(ctx context.Context, raw string) (*Location, error) {
	zip := strings.TrimSpace(raw)
	if zip == "" {
		return nil, ErrEmptyInput
	}
	if !isZipcode(zip) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZip, zip)
	}
	return lookupZipcodeInDB(ctx, g.db, zip)
}

// isZipcode checks if a string looks like a US zipcode
func isZipcode(s string) bool {
	// Match 5-digit or 9-digit (with hyphen) zipcodes
	matched, _ := regexp.MatchString(`^\d{5}(-\d{4})?$`, s)
	return matched
}
