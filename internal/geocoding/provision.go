package geocoding

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// DefaultZipcodeURL is the full US zipcode table downloaded on first run
const DefaultZipcodeURL = "https://raw.githubusercontent.com/midwire/free_zipcode_data/develop/all_us_zipcodes.csv"

// Where the zipcodes table was built from
const (
	sourceDownload = "download"
	sourceEmbedded = "embedded"
)

// zipcodeCSV is a small offline table used when the download is unavailable
//
//go:embed zipcodes.csv
var zipcodeCSV []byte

// Source says where the full zipcode table comes from. An empty URL
// provisions only the embedded table.
type Source struct {
	URL    string
	Client *http.Client
	Logger *slog.Logger
}

// ProvisionZipcodeTable builds the zipcodes table. The full table is
// downloaded when src has a URL; if that fails the embedded table is used and
// the download is retried on the next run.
func ProvisionZipcodeTable(ctx context.Context, db *sql.DB, src Source) error {
	logger := src.Logger
	if logger == nil {
		logger = slog.Default()
	}

	current, err := provisionedFrom(db)
	if err != nil {
		return err
	}
	if current == sourceDownload || (current == sourceEmbedded && src.URL == "") {
		return nil
	}

	embedded, err := ParseZipcodes(bytes.NewReader(zipcodeCSV))
	if err != nil {
		return fmt.Errorf("parsing embedded zipcodes: %w", err)
	}

	if src.URL != "" {
		logger.Info("downloading zipcode data", "url", src.URL)
		downloaded, err := downloadZipcodes(ctx, src)
		if err == nil {
			if err := buildZipcodeTable(db, append(downloaded, embedded...), sourceDownload); err != nil {
				return err
			}
			logger.Info("provisioned zipcode table", "zipcodes", len(downloaded))
			return nil
		}
		logger.Warn("zipcode download failed, using embedded table", "error", err)
	}

	if current == sourceEmbedded {
		return nil
	}
	return buildZipcodeTable(db, embedded, sourceEmbedded)
}

// NeedsProvisioning checks if the zipcodes table is missing
func NeedsProvisioning(db *sql.DB) (bool, error) {
	source, err := provisionedFrom(db)
	return source == "", err
}

// provisionedFrom reports how the zipcodes table was built, or "" if it was not
func provisionedFrom(db *sql.DB) (string, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='zipcode_meta'").Scan(&count)
	if err != nil {
		return "", fmt.Errorf("checking for zipcodes table: %w", err)
	}
	if count == 0 {
		return "", nil
	}

	var source string
	err = db.QueryRow("SELECT value FROM zipcode_meta WHERE key = 'source'").Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading zipcode source: %w", err)
	}
	return source, nil
}

// downloadZipcodes fetches and parses the full zipcode table
func downloadZipcodes(ctx context.Context, src Source) ([]Location, error) {
	client := src.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, "GET", src.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	locations, err := ParseZipcodes(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, errors.New("downloaded zipcode table is empty")
	}
	return locations, nil
}

// zipcodeColumns maps accepted header names to the fields they fill
var zipcodeColumns = map[string]string{
	"zipcode":   "zipcode",
	"zip":       "zipcode",
	"code":      "zipcode",
	"city":      "city",
	"state":     "state",
	"latitude":  "latitude",
	"lat":       "latitude",
	"longitude": "longitude",
	"long":      "longitude",
	"lon":       "longitude",
	"lng":       "longitude",
}

// ParseZipcodes reads a CSV whose header names the zipcode, city, state,
// latitude and longitude columns, in any order. Rows that do not parse are
// skipped.
func ParseZipcodes(r io.Reader) ([]Location, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		field, ok := zipcodeColumns[strings.ToLower(strings.TrimSpace(name))]
		if _, seen := idx[field]; ok && !seen {
			idx[field] = i
		}
	}
	for _, field := range []string{"zipcode", "city", "state", "latitude", "longitude"} {
		if _, ok := idx[field]; !ok {
			return nil, fmt.Errorf("zipcode table has no %s column", field)
		}
	}

	var locations []Location
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // Skip invalid records
		}

		loc, ok := parseZipcodeRecord(record, idx)
		if !ok {
			continue
		}
		locations = append(locations, loc)
	}

	return locations, nil
}

// parseZipcodeRecord converts one row, padding numeric zipcodes that lost
// their leading zeros
func parseZipcodeRecord(record []string, idx map[string]int) (Location, bool) {
	for _, i := range idx {
		if i >= len(record) {
			return Location{}, false
		}
	}

	zip := strings.TrimSpace(record[idx["zipcode"]])
	if len(zip) < 5 {
		zip = strings.Repeat("0", 5-len(zip)) + zip
	}
	if !isZipcode(zip) {
		return Location{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[idx["latitude"]]), 64)
	if err != nil {
		return Location{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(record[idx["longitude"]]), 64)
	if err != nil {
		return Location{}, false
	}

	return Location{
		Zipcode:   zip,
		City:      strings.TrimSpace(record[idx["city"]]),
		State:     strings.ToUpper(strings.TrimSpace(record[idx["state"]])),
		Latitude:  lat,
		Longitude: lon,
	}, true
}

// buildZipcodeTable creates the zipcodes table, inserts every location and
// records where they came from. Earlier rows win for duplicate zipcodes.
func buildZipcodeTable(db *sql.DB, locations []Location, source string) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS zipcodes (
			zipcode TEXT PRIMARY KEY,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_zipcodes_state ON zipcodes(state);
		CREATE TABLE IF NOT EXISTS zipcode_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating zipcodes table: %w", err)
	}

	// Begin transaction for faster inserts
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO zipcodes (zipcode, city, state, latitude, longitude) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, loc := range locations {
		if _, err := stmt.Exec(loc.Zipcode, loc.City, loc.State, loc.Latitude, loc.Longitude); err != nil {
			return fmt.Errorf("inserting zipcode %s: %w", loc.Zipcode, err)
		}
	}

	if _, err := tx.Exec("INSERT OR REPLACE INTO zipcode_meta (key, value) VALUES ('source', ?)", source); err != nil {
		return fmt.Errorf("recording zipcode source: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
