package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeDigitransit represents the Digitransit Pelias geocoding provider.
	ProviderTypeDigitransit ProviderType = "digitransit"
	// ProviderTypeGoogle represents the Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
)

// ErrMissingAPIKey is returned when a provider requiring a credential is
// configured without one. This is a fatal configuration error, not a
// per-request condition.
var ErrMissingAPIKey = errors.New("API key is required for geocoding provider")

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType  // Type of provider to create
	APIKey    string        // API credential (required by both providers)
	Timeout   time.Duration // Per-request timeout budget
	RateLimit int           // Rate limit for requests per second
	Logger    *slog.Logger  // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
// It applies the Factory pattern to decouple provider instantiation from
// business logic.
//
// Supported provider types:
// - "digitransit": Digitransit Pelias search API (default, requires subscription key)
// - "google": Google Maps Geocoding API (requires API key)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeDigitransit:
		return newDigitransitProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newDigitransitProvider creates a Digitransit geocoding provider.
func newDigitransitProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: digitransit", ErrMissingAPIKey)
	}

	if config.RateLimit == 0 {
		config.RateLimit = 10
		config.Logger.Warn("Rate limit for Digitransit API not set, set a default value", "value", config.RateLimit)
	}

	return NewDigitransitProvider(config.APIKey, config.Timeout, config.RateLimit, config.Logger), nil
}

// newGoogleProvider creates a Google Maps geocoding provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: google", ErrMissingAPIKey)
	}

	clientOpts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}
