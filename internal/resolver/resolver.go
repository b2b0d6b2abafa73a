// Package resolver orchestrates one query resolution: parse the request,
// expand it into variants, collect geocoder candidates per variant, drop
// candidates outside the transit service area, rank what remains and detect
// ambiguity.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fheinonen/stopfinder/internal/geocoding"
	"github.com/fheinonen/stopfinder/internal/metrics"
	"github.com/fheinonen/stopfinder/internal/models"
	"github.com/fheinonen/stopfinder/internal/normalize"
	"github.com/fheinonen/stopfinder/internal/scoring"
	"github.com/fheinonen/stopfinder/internal/transit"
	"github.com/fheinonen/stopfinder/internal/variants"
)

// minQueryLength is the shortest usable query text after trimming.
const minQueryLength = 3

// maxChoices caps how many competing locations an ambiguous response carries.
const maxChoices = 4

var langTagPattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2})?$`)

// Validation errors surface as 400 responses; upstream errors as 500.
var (
	ErrInvalidText   = errors.New("query text is missing or too short")
	ErrInvalidCoords = errors.New("bias coordinates are invalid or incomplete")
	ErrUpstream      = errors.New("upstream lookup failed")
)

// RawQuery carries the unparsed request parameters. Lat and Lon stay strings
// so the pipeline itself owns the "both or neither, both finite" rule.
type RawQuery struct {
	Text string
	Lat  string
	Lon  string
	Lang string
}

// rankedCandidate pairs a candidate with its ranking keys.
type rankedCandidate struct {
	candidate models.GeocodeCandidate
	score     float64
	strong    int
}

// Resolver provides query resolution against a geocoding provider and a
// transit stop oracle. It holds no per-request state and is safe to use from
// concurrent requests.
type Resolver struct {
	log       *slog.Logger        // Logger for logging service activities
	provider  geocoding.Provider  // Full-text geocoding provider
	validator *transit.Validator  // Transit-area validator
	generator *variants.Generator // Query variant generator
	scorer    *scoring.Scorer     // Candidate scorer
	metrics   *metrics.Metrics    // Metrics for tracking service performance
	bias      models.Coordinates  // Default focus point (service-area centroid)
}

// NewResolver creates a new Resolver instance.
func NewResolver(
	log *slog.Logger,
	provider geocoding.Provider,
	validator *transit.Validator,
	generator *variants.Generator,
	scorer *scoring.Scorer,
	appMetrics *metrics.Metrics,
	bias models.Coordinates,
) *Resolver {
	return &Resolver{
		log:       log,
		provider:  provider,
		validator: validator,
		generator: generator,
		scorer:    scorer,
		metrics:   appMetrics,
		bias:      bias,
	}
}

// Resolve runs the full pipeline for one request. Input validation happens
// before any network call; any upstream failure aborts the whole resolution
// with no partial answer.
func (r *Resolver) Resolve(ctx context.Context, raw RawQuery) (*models.Resolution, error) {
	text := strings.TrimSpace(raw.Text)
	if utf8.RuneCountInString(text) < minQueryLength {
		r.metrics.Resolutions.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidText
	}

	bias, err := r.parseBias(raw.Lat, raw.Lon)
	if err != nil {
		r.metrics.Resolutions.WithLabelValues("invalid").Inc()
		return nil, err
	}

	lang := raw.Lang
	if !langTagPattern.MatchString(lang) {
		lang = ""
	}

	queryVariants := r.generator.Build(text)
	if len(queryVariants) == 0 {
		r.metrics.Resolutions.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidText
	}

	candidates, err := r.collectCandidates(ctx, queryVariants, bias, lang)
	if err != nil {
		r.metrics.Resolutions.WithLabelValues("error").Inc()
		r.metrics.UpstreamErrors.Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	start := time.Now()
	valid, err := r.validator.FilterNearby(ctx, candidates)
	r.metrics.UpstreamSeconds.WithLabelValues("transit").Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.Resolutions.WithLabelValues("error").Inc()
		r.metrics.UpstreamErrors.Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	resolution := r.rank(ctx, text, valid)
	switch {
	case resolution.Location == nil:
		r.metrics.Resolutions.WithLabelValues("no_match").Inc()
	case resolution.Ambiguous:
		r.metrics.Resolutions.WithLabelValues("ambiguous").Inc()
	default:
		r.metrics.Resolutions.WithLabelValues("resolved").Inc()
	}

	return resolution, nil
}

// parseBias enforces the "both or neither" rule for the optional focus point.
func (r *Resolver) parseBias(latStr, lonStr string) (models.Coordinates, error) {
	if latStr == "" && lonStr == "" {
		return r.bias, nil
	}
	if latStr == "" || lonStr == "" {
		return models.Coordinates{}, ErrInvalidCoords
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return models.Coordinates{}, ErrInvalidCoords
	}
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return models.Coordinates{}, ErrInvalidCoords
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return models.Coordinates{}, ErrInvalidCoords
	}

	return models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// collectCandidates queries the geocoder once per variant, in variant order.
// Lookups are deliberately sequential so accumulation order, and with it the
// variant-trust tie-break, stays deterministic. A failing variant aborts the
// whole collection.
func (r *Resolver) collectCandidates(
	ctx context.Context,
	queryVariants []string,
	bias models.Coordinates,
	lang string,
) ([]models.GeocodeCandidate, error) {
	var candidates []models.GeocodeCandidate

	for idx, variant := range queryVariants {
		start := time.Now()
		places, err := r.provider.Search(ctx, geocoding.Query{
			Text:     variant,
			FocusLat: bias.Latitude,
			FocusLon: bias.Longitude,
			Language: lang,
		})
		r.metrics.UpstreamSeconds.WithLabelValues("geocoder").Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("variant %d (%q): %w", idx, variant, err)
		}

		for _, place := range places {
			candidates = append(candidates, models.GeocodeCandidate{
				Place:        place,
				VariantIndex: idx,
				VariantText:  variant,
			})
		}
	}

	r.log.DebugContext(ctx, "Candidate collection finished",
		"variants", len(queryVariants), "candidates", len(candidates))

	return candidates, nil
}

// rank scores the validated candidates against the original query, orders
// them and shapes the response, including ambiguity detection.
func (r *Resolver) rank(ctx context.Context, text string, valid []models.GeocodeCandidate) *models.Resolution {
	noMatch := &models.Resolution{
		Query:   text,
		Choices: []models.LocationPayload{},
		Message: models.NoMatchMessage,
	}
	if len(valid) == 0 {
		return noMatch
	}

	queryMatch := normalize.ForMatch(text)

	ranked := make([]rankedCandidate, 0, len(valid))
	for _, cand := range valid {
		ranked = append(ranked, rankedCandidate{
			candidate: cand,
			score:     r.scorer.Score(queryMatch, cand),
			strong:    r.scorer.StrongTokenMatches(queryMatch, cand.Label),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.strong != b.strong {
			return a.strong > b.strong
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if ca, cb := confidenceOrNegative(a.candidate), confidenceOrNegative(b.candidate); ca != cb {
			return ca > cb
		}
		return a.candidate.VariantIndex < b.candidate.VariantIndex
	})

	best := ranked[0]

	// Several competitors none of which matched a single strong token is
	// noise, not a meaningful ambiguity; report no match instead.
	if len(ranked) >= 2 && best.strong == 0 {
		r.log.DebugContext(ctx, "Only weak-token matches found", "query", text, "candidates", len(ranked))
		return noMatch
	}

	choices := []models.LocationPayload{}
	ambiguous := false
	if len(ranked) >= 2 && best.strong > 0 {
		seen := make(map[string]bool, maxChoices)
		for _, rc := range ranked {
			if rc.strong != best.strong {
				continue
			}
			if rc.score < best.score-scoring.AmbiguityScoreDelta {
				continue
			}
			key := transit.CoordKey(rc.candidate.Lat, rc.candidate.Lon)
			if seen[key] {
				continue
			}
			seen[key] = true
			choices = append(choices, models.PayloadFromCandidate(rc.candidate))
			if len(choices) == maxChoices {
				break
			}
		}
		if len(choices) >= 2 {
			ambiguous = true
		} else {
			choices = []models.LocationPayload{}
		}
	}

	location := models.PayloadFromCandidate(best.candidate)

	r.log.DebugContext(ctx, "Query resolved",
		"query", text,
		"label", best.candidate.Label,
		"score", best.score,
		"strong_matches", best.strong,
		"ambiguous", ambiguous)

	return &models.Resolution{
		Query:     text,
		Location:  &location,
		Choices:   choices,
		Ambiguous: ambiguous,
	}
}

func confidenceOrNegative(cand models.GeocodeCandidate) float64 {
	if cand.Confidence == nil {
		return -1
	}
	return *cand.Confidence
}
