package transit

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/fheinonen/stopfinder/internal/models"
)

// coordKeyPrecision is the number of decimal places a coordinate is rounded
// to when used as a cache key (~0.1 m, far below the stop search radius).
const coordKeyPrecision = 6

// Validator drops geocoder candidates that have no transit stop nearby.
// A location outside the service area is not a valid answer regardless of
// how well its label matches the query.
type Validator struct {
	oracle StopOracle
	log    *slog.Logger
}

// NewValidator creates a Validator backed by the given stop oracle.
func NewValidator(oracle StopOracle, log *slog.Logger) *Validator {
	return &Validator{oracle: oracle, log: log}
}

// FilterNearby returns the candidates that have at least one stop within the
// search radius, preserving input order. The oracle is asked once per
// distinct rounded coordinate; the answer cache lives on this call's stack
// and is never shared across resolutions.
func (v *Validator) FilterNearby(
	ctx context.Context,
	candidates []models.GeocodeCandidate,
) ([]models.GeocodeCandidate, error) {
	cache := make(map[string]bool, len(candidates))
	valid := make([]models.GeocodeCandidate, 0, len(candidates))

	for _, cand := range candidates {
		key := CoordKey(cand.Lat, cand.Lon)
		nearby, cached := cache[key]
		if !cached {
			var err error
			nearby, err = v.oracle.HasNearbyStop(ctx, cand.Lat, cand.Lon)
			if err != nil {
				return nil, err
			}
			cache[key] = nearby
		}

		if nearby {
			valid = append(valid, cand)
		} else {
			v.log.DebugContext(ctx, "Dropping candidate outside service area",
				"label", cand.Label, "lat", cand.Lat, "lon", cand.Lon)
		}
	}

	return valid, nil
}

// CoordKey builds the rounded-coordinate key used for validation caching and
// for deduplicating ambiguity choices.
func CoordKey(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', coordKeyPrecision, 64) +
		"," + strconv.FormatFloat(lon, 'f', coordKeyPrecision, 64)
}
