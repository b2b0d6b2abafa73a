package transit_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fheinonen/stopfinder/internal/models"
	"github.com/fheinonen/stopfinder/internal/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOracle answers from a fixed map and counts its calls.
type fakeOracle struct {
	answers map[string]bool
	calls   int
	err     error
}

func (f *fakeOracle) HasNearbyStop(_ context.Context, lat, lon float64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.answers[transit.CoordKey(lat, lon)], nil
}

func cand(label string, lat, lon float64) models.GeocodeCandidate {
	return models.GeocodeCandidate{Place: models.Place{Lat: lat, Lon: lon, Label: label}}
}

func TestValidator_FilterNearby(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("drops candidates without nearby stops and preserves order", func(t *testing.T) {
		oracle := &fakeOracle{answers: map[string]bool{
			transit.CoordKey(60.1699, 24.9384): true,
			transit.CoordKey(61.5000, 23.7500): false,
			transit.CoordKey(60.2055, 24.6559): true,
		}}
		validator := transit.NewValidator(oracle, logger)

		input := []models.GeocodeCandidate{
			cand("Kamppi, Helsinki", 60.1699, 24.9384),
			cand("Tampere", 61.5000, 23.7500),
			cand("Leppävaara, Espoo", 60.2055, 24.6559),
		}

		valid, err := validator.FilterNearby(ctx, input)

		require.NoError(t, err)
		require.Len(t, valid, 2)
		assert.Equal(t, "Kamppi, Helsinki", valid[0].Label)
		assert.Equal(t, "Leppävaara, Espoo", valid[1].Label)
		assert.Equal(t, 3, oracle.calls)
	})

	t.Run("asks the oracle once per distinct rounded coordinate", func(t *testing.T) {
		oracle := &fakeOracle{answers: map[string]bool{
			transit.CoordKey(60.1699, 24.9384): true,
		}}
		validator := transit.NewValidator(oracle, logger)

		input := []models.GeocodeCandidate{
			cand("Kamppi", 60.1699, 24.9384),
			cand("Kamppi via variant", 60.1699, 24.9384),
			// Differs only past the sixth decimal, rounds to the same key.
			cand("Kamppi again", 60.16990000004, 24.93839999996),
		}

		valid, err := validator.FilterNearby(ctx, input)

		require.NoError(t, err)
		assert.Len(t, valid, 3)
		assert.Equal(t, 1, oracle.calls)
	})

	t.Run("oracle error aborts validation", func(t *testing.T) {
		oracle := &fakeOracle{err: assert.AnError}
		validator := transit.NewValidator(oracle, logger)

		valid, err := validator.FilterNearby(ctx, []models.GeocodeCandidate{
			cand("Kamppi", 60.1699, 24.9384),
		})

		require.Error(t, err)
		assert.Nil(t, valid)
	})

	t.Run("empty input", func(t *testing.T) {
		oracle := &fakeOracle{}
		validator := transit.NewValidator(oracle, logger)

		valid, err := validator.FilterNearby(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, valid)
		assert.Zero(t, oracle.calls)
	})
}

func TestCoordKey(t *testing.T) {
	assert.Equal(t, "60.169900,24.938400", transit.CoordKey(60.1699, 24.9384))
	assert.Equal(t, transit.CoordKey(60.1699, 24.9384), transit.CoordKey(60.16990000004, 24.93839999996))
	assert.NotEqual(t, transit.CoordKey(60.1699, 24.9384), transit.CoordKey(24.9384, 60.1699))
}
