package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the stopfinder service.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - Port: The HTTP server port.
// - ProviderType: The geocoding provider to use (digitransit, google).
// - APIKey: The API credential for the upstream services (required).
// - Timeout: Per-request timeout budget for upstream calls.
// - RateLimit: Upstream requests per second.
// - BiasLat/BiasLon: Default focus point when the client supplies none.
// - Municipalities: Service-area municipality names, used by variant
//   generation and by the weak-token rule in scoring.
type Config struct {
	Env            string
	Port           int
	ProviderType   string
	APIKey         string
	Timeout        time.Duration
	RateLimit      int
	BiasLat        float64
	BiasLon        float64
	Municipalities []string
}

// MustLoad loads the configuration from the environment (and an optional
// .env file) and returns a Config. Malformed values panic; a missing API key
// does not, so the factory can surface it as a configuration error.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STOPFINDER")
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("port", 8080)
	v.SetDefault("provider_type", "digitransit")
	v.SetDefault("timeout", "7s")
	v.SetDefault("rate_limit", 10)
	v.SetDefault("bias_lat", 60.1699)
	v.SetDefault("bias_lon", 24.9384)
	v.SetDefault("municipalities", "helsinki,espoo,vantaa,kauniainen")

	timeout := v.GetDuration("timeout")
	if timeout <= 0 {
		panic("failed to parse timeout from configuration")
	}

	port := v.GetInt("port")
	if port <= 0 {
		panic("failed to parse port from configuration, must be a positive integer")
	}

	rateLimit := v.GetInt("rate_limit")
	if rateLimit <= 0 {
		panic("failed to parse rate limit from configuration, must be a positive integer")
	}

	return &Config{
		Env:            v.GetString("env"),
		Port:           port,
		ProviderType:   v.GetString("provider_type"),
		APIKey:         v.GetString("api_key"),
		Timeout:        timeout,
		RateLimit:      rateLimit,
		BiasLat:        v.GetFloat64("bias_lat"),
		BiasLon:        v.GetFloat64("bias_lon"),
		Municipalities: splitList(v.GetString("municipalities")),
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
