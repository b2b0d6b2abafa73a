// Package transit answers whether a coordinate lies inside the transit
// service area, defined as having at least one stop within a fixed radius.
package transit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DigitransitRoutingURL is the Digitransit HSL routing GraphQL endpoint.
const DigitransitRoutingURL = "https://api.digitransit.fi/routing/v2/hsl/gtfs/v1"

// StopSearchRadiusMeters is how far from a candidate a stop may be for the
// candidate to count as inside the service area.
const StopSearchRadiusMeters = 2500

const subscriptionKeyHeader = "digitransit-subscription-key"

const stopsByRadiusQuery = `query StopsNear($lat: Float!, $lon: Float!, $radius: Int!) {
  stopsByRadius(lat: $lat, lon: $lon, radius: $radius) {
    edges { node { stop { gtfsId } } }
  }
}`

// ErrRoutingUnauthorized is returned when the routing API rejects the credential.
var ErrRoutingUnauthorized = errors.New("routing API rejected the subscription key")

// StopOracle answers point-radius "is there a stop near here" questions.
type StopOracle interface {
	HasNearbyStop(ctx context.Context, lat, lon float64) (bool, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DigitransitOracle implements StopOracle against the Digitransit routing
// GraphQL API using its stopsByRadius query.
type DigitransitOracle struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Routing GraphQL endpoint
	apiKey  string       // Digitransit subscription key
	log     *slog.Logger // Logger for logging operations
}

type stopsByRadiusResponse struct {
	Data struct {
		StopsByRadius struct {
			Edges []struct {
				Node struct {
					Stop struct {
						GtfsID string `json:"gtfsId"`
					} `json:"stop"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"stopsByRadius"`
	} `json:"data"`
}

// NewDigitransitOracle creates a stop oracle backed by the Digitransit routing API.
func NewDigitransitOracle(apiKey string, timeout time.Duration, log *slog.Logger) *DigitransitOracle {
	return &DigitransitOracle{
		client:  &http.Client{Timeout: timeout},
		baseURL: DigitransitRoutingURL,
		apiKey:  apiKey,
		log:     log,
	}
}

// NewDigitransitOracleWithClient allows injecting a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewDigitransitOracleWithClient(client HTTPClient, apiKey string, log *slog.Logger) *DigitransitOracle {
	return &DigitransitOracle{
		client:  client,
		baseURL: DigitransitRoutingURL,
		apiKey:  apiKey,
		log:     log,
	}
}

// HasNearbyStop reports whether at least one stop exists within
// StopSearchRadiusMeters of the coordinate.
func (do *DigitransitOracle) HasNearbyStop(ctx context.Context, lat, lon float64) (bool, error) {
	do.log.DebugContext(ctx, "Checking for nearby stops", "lat", lat, "lon", lon)

	payload := map[string]any{
		"query": stopsByRadiusQuery,
		"variables": map[string]any{
			"lat":    lat,
			"lon":    lon,
			"radius": StopSearchRadiusMeters,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode stop query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, do.baseURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(subscriptionKeyHeader, do.apiKey)

	resp, err := do.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute stop query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return false, ErrRoutingUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		do.log.ErrorContext(ctx, "Routing API error", "status", resp.StatusCode, "body", string(respBody))
		return false, fmt.Errorf("routing API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed stopsByRadiusResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		do.log.ErrorContext(ctx, "Failed to parse routing response", "error", err)
		return false, fmt.Errorf("failed to decode routing response: %w", err)
	}

	for _, edge := range parsed.Data.StopsByRadius.Edges {
		if edge.Node.Stop.GtfsID != "" {
			return true, nil
		}
	}

	return false, nil
}
