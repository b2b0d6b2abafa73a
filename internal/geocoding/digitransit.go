package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fheinonen/stopfinder/internal/models"
	"golang.org/x/time/rate"
)

// DigitransitBaseURL is the Digitransit Pelias geocoding search endpoint.
const DigitransitBaseURL = "https://api.digitransit.fi/geocoding/v1/search"

// subscriptionKeyHeader carries the Digitransit API credential.
const subscriptionKeyHeader = "digitransit-subscription-key"

// searchResultSize is how many features one search asks for.
const searchResultSize = 5

// Common errors for the Digitransit provider.
var (
	ErrDigitransitUnauthorized = errors.New("digitransit API rejected the subscription key")
)

// DigitransitProvider implements the Provider interface using the Digitransit
// Pelias geocoding API, restricted to Finland and biased toward a focus point.
type DigitransitProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Pelias search API
	apiKey  string        // Digitransit subscription key
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// peliasResponse represents the GeoJSON-like feature collection returned by Pelias.
type peliasResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Properties struct {
			Label      string   `json:"label"`
			Name       string   `json:"name"`
			Locality   string   `json:"locality"`
			Region     string   `json:"region"`
			Confidence *float64 `json:"confidence"`
		} `json:"properties"`
	} `json:"features"`
}

// NewDigitransitProvider creates a new Digitransit geocoding provider.
func NewDigitransitProvider(apiKey string, timeout time.Duration, rateLimit int, log *slog.Logger) *DigitransitProvider {
	return &DigitransitProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: DigitransitBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewDigitransitProviderWithClient allows injecting a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewDigitransitProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *DigitransitProvider {
	return &DigitransitProvider{
		client:  client,
		baseURL: DigitransitBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// Search runs one Pelias text search and returns the usable places it found.
// Features with out-of-range or non-finite coordinates, or no usable label,
// are skipped.
func (dp *DigitransitProvider) Search(ctx context.Context, query Query) ([]models.Place, error) {
	if err := dp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	dp.log.DebugContext(ctx, "Searching using Digitransit", "text", query.Text)

	reqURL, err := url.Parse(dp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("text", query.Text)
	params.Set("size", strconv.Itoa(searchResultSize))
	params.Set("boundary.country", "FIN")
	params.Set("focus.point.lat", strconv.FormatFloat(query.FocusLat, 'f', -1, 64))
	params.Set("focus.point.lon", strconv.FormatFloat(query.FocusLon, 'f', -1, 64))
	if query.Language != "" {
		params.Set("lang", query.Language)
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(subscriptionKeyHeader, dp.apiKey)

	resp, err := dp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrDigitransitUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		dp.log.ErrorContext(ctx, "Digitransit API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("digitransit API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed peliasResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		dp.log.ErrorContext(ctx, "Failed to parse Digitransit response", "error", err)
		return nil, fmt.Errorf("failed to decode digitransit response: %w", err)
	}

	places := make([]models.Place, 0, len(parsed.Features))
	for _, feature := range parsed.Features {
		coords := feature.Geometry.Coordinates
		if len(coords) < 2 {
			continue
		}
		lon, lat := coords[0], coords[1]
		if !validCoordinate(lat, lon) {
			dp.log.DebugContext(ctx, "Skipping feature with invalid coordinates", "lat", lat, "lon", lon)
			continue
		}

		label := featureLabel(feature.Properties.Label, feature.Properties.Name,
			feature.Properties.Locality, feature.Properties.Region)
		if label == "" {
			continue
		}

		places = append(places, models.Place{
			Lat:        lat,
			Lon:        lon,
			Label:      label,
			Confidence: clampConfidence(feature.Properties.Confidence),
		})
	}

	dp.log.DebugContext(ctx, "Digitransit search finished", "text", query.Text, "places", len(places))

	return places, nil
}

// featureLabel builds a display label: properties.label, falling back to
// name, falling back to "locality, region".
func featureLabel(label, name, locality, region string) string {
	if label != "" {
		return label
	}
	if name != "" {
		return name
	}
	switch {
	case locality != "" && region != "":
		return locality + ", " + region
	case locality != "":
		return locality
	default:
		return region
	}
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func clampConfidence(conf *float64) *float64 {
	if conf == nil {
		return nil
	}
	c := *conf
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return nil
	}
	if c < 0 {
		c = 0
	} else if c > 1 {
		c = 1
	}
	return &c
}
