package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ngmaloney/isitfrozen/internal/models"
)

// Client implements StationFinder and ObservationFetcher using the NWS API
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new NWS API client
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// FindNearestStation resolves the grid point for the coordinates, follows its
// observationStations link and returns the first station listed.
func (c *Client) FindNearestStation(ctx context.Context, coordinates string) (*models.Station, error) {
	stationsURL, err := c.observationStationsURL(ctx, coordinates)
	if err != nil {
		return nil, err
	}

	var stationsResp stationCollectionResponse
	if err := c.getJSON(ctx, "observationStations", stationsURL, &stationsResp); err != nil {
		return nil, err
	}

	if len(stationsResp.Features) == 0 || stationsResp.Features[0].Properties.StationIdentifier == "" {
		return nil, fmt.Errorf("observationStations for %s: %w: stationIdentifier", coordinates, ErrMissingField)
	}

	props := stationsResp.Features[0].Properties
	return &models.Station{Identifier: props.StationIdentifier, Name: props.Name}, nil
}

// StationsByState returns every observation station in the state, sorted by name
func (c *Client) StationsByState(ctx context.Context, state string) ([]models.Station, error) {
	reqURL := fmt.Sprintf("%s/stations?state=%s", c.baseURL, url.QueryEscape(state))

	var stationsResp stationCollectionResponse
	if err := c.getJSON(ctx, "stations", reqURL, &stationsResp); err != nil {
		return nil, err
	}

	stations := make([]models.Station, 0, len(stationsResp.Features))
	for _, f := range stationsResp.Features {
		if f.Properties.StationIdentifier == "" {
			continue
		}
		stations = append(stations, models.Station{
			Identifier: f.Properties.StationIdentifier,
			Name:       f.Properties.Name,
		})
	}

	models.SortStations(stations)
	return stations, nil
}

// Observations retrieves the station's observations between start and end.
// Only the first page of results is read. Features whose timestamp does not
// parse are skipped.
func (c *Client) Observations(ctx context.Context, stationID string, start, end time.Time) ([]models.Observation, error) {
	params := url.Values{}
	params.Set("start", start.UTC().Format(time.RFC3339))
	params.Set("end", end.UTC().Format(time.RFC3339))
	reqURL := fmt.Sprintf("%s/stations/%s/observations?%s", c.baseURL, url.PathEscape(stationID), params.Encode())

	var obsResp observationCollectionResponse
	if err := c.getJSON(ctx, "observations", reqURL, &obsResp); err != nil {
		return nil, err
	}

	observations := make([]models.Observation, 0, len(obsResp.Features))
	for _, f := range obsResp.Features {
		// Readings without a usable timestamp cannot be listed
		ts, err := time.Parse(time.RFC3339, f.Properties.Timestamp)
		if err != nil {
			continue
		}
		observations = append(observations, models.Observation{
			Timestamp:   ts,
			Temperature: f.Properties.Temperature.Value,
			UnitCode:    f.Properties.Temperature.UnitCode,
		})
	}

	return observations, nil
}

// observationStationsURL gets the observationStations link for a grid point
func (c *Client) observationStationsURL(ctx context.Context, coordinates string) (string, error) {
	reqURL := fmt.Sprintf("%s/points/%s", c.baseURL, coordinates)

	var pointResp pointResponse
	if err := c.getJSON(ctx, "points", reqURL, &pointResp); err != nil {
		return "", err
	}

	if pointResp.Properties.ObservationStations == "" {
		return "", fmt.Errorf("points for %s: %w: observationStations", coordinates, ErrMissingField)
	}
	return pointResp.Properties.ObservationStations, nil
}

// getJSON performs a GET and decodes the JSON body into out
func (c *Client) getJSON(ctx context.Context, endpoint, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// Internal types for NWS API responses

type pointResponse struct {
	Properties struct {
		ObservationStations string `json:"observationStations"`
	} `json:"properties"`
}

type stationCollectionResponse struct {
	Features []struct {
		Properties struct {
			StationIdentifier string `json:"stationIdentifier"`
			Name              string `json:"name"`
		} `json:"properties"`
	} `json:"features"`
}

type observationCollectionResponse struct {
	Features []struct {
		Properties struct {
			Timestamp   string `json:"timestamp"`
			Temperature struct {
				Value    *float64 `json:"value"`
				UnitCode string   `json:"unitCode"`
			} `json:"temperature"`
		} `json:"properties"`
	} `json:"features"`
}
