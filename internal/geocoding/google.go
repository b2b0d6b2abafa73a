package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fheinonen/stopfinder/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is an alternative to the default
// Digitransit provider; Google returns no confidence value, so candidates
// from it never earn the confidence bonus.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient defines the subset of the Google Maps client used here.
// This allows for easy mocking in tests.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Search geocodes the query text via the Google Maps Geocoding API,
// restricted to Finland. Results with invalid coordinates are skipped.
func (gp *GoogleProvider) Search(ctx context.Context, query Query) ([]models.Place, error) {
	gp.log.DebugContext(ctx, "Searching using Google Maps", "text", query.Text)

	req := maps.GeocodingRequest{
		Address:  query.Text,
		Region:   "fi",
		Language: query.Language,
	}
	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode text: %w", err)
	}

	places := make([]models.Place, 0, len(results))
	for _, result := range results {
		loc := result.Geometry.Location
		if !validCoordinate(loc.Lat, loc.Lng) {
			continue
		}
		if result.FormattedAddress == "" {
			continue
		}
		places = append(places, models.Place{
			Lat:   loc.Lat,
			Lon:   loc.Lng,
			Label: result.FormattedAddress,
		})
	}

	return places, nil
}
