package geocoding

import (
	"context"
	"net/http"

	"github.com/fheinonen/stopfinder/internal/models"
)

// Query describes one text-search request against a geocoding provider.
type Query struct {
	Text     string  // Text is the (possibly variant) query string.
	FocusLat float64 // FocusLat biases results toward this latitude.
	FocusLon float64 // FocusLon biases results toward this longitude.
	Language string  // Language is an optional BCP-47-ish tag, empty to omit.
}

// Provider is an interface that defines a method for full-text place search.
// Search takes a context and a query, and returns the ranked places the
// provider found, possibly none.
type Provider interface {
	Search(ctx context.Context, query Query) ([]models.Place, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
