package valuation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRatesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	content := `{
		"area_rate_per_sqm": 250,
		"floor_rate": 1500,
		"feature_rates": {"parking_spots": 75}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rates, err := LoadRatesFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250.0, rates.AreaRatePerSqm)
	assert.Equal(t, 1500.0, rates.FloorRate)
	assert.Equal(t, 75.0, rates.FeatureRates["parking_spots"])
	// Untouched fields keep their defaults
	assert.Equal(t, DefaultRates().ConditionMagnitude, rates.ConditionMagnitude)
}

func TestLoadRatesFromFileMissingFallsBack(t *testing.T) {
	rates, err := LoadRatesFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, DefaultRates(), rates)
}

func TestLoadRatesFromFileMalformedFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	rates, err := LoadRatesFromFile(path)
	require.Error(t, err)
	assert.Equal(t, DefaultRates(), rates)
}

func TestWithOverrides(t *testing.T) {
	base := DefaultRates()
	base.FeatureRates["garage"] = 10

	overlaid := base.WithOverrides(map[string]float64{
		"area":          300,
		"floor":         999,
		"condition":     7000,
		"renovation":    9000,
		"distance":      750,
		"parking_spots": 60,
	})

	assert.Equal(t, 300.0, overlaid.AreaRatePerSqm)
	assert.Equal(t, 999.0, overlaid.FloorRate)
	assert.Equal(t, 7000.0, overlaid.ConditionMagnitude)
	assert.Equal(t, 9000.0, overlaid.RenovationMagnitude)
	assert.Equal(t, 750.0, overlaid.DistanceRatePerKm)
	assert.Equal(t, 60.0, overlaid.FeatureRates["parking_spots"])
	assert.Equal(t, 10.0, overlaid.FeatureRates["garage"])

	// The base table is untouched
	assert.Equal(t, 100.0, base.AreaRatePerSqm)
	assert.NotContains(t, base.FeatureRates, "parking_spots")
}

func TestStatsHelpers(t *testing.T) {
	assert.Equal(t, 45000000.0, mean([]float64{42000000, 48000000}))
	assert.Equal(t, 45000000.0, median([]float64{42000000, 48000000}))
	assert.Equal(t, 3.0, median([]float64{5, 1, 3}))

	// Sample stddev of {42M, 48M}: sqrt(((−3M)² + (3M)²) / 1)
	sd := sampleStddev([]float64{42000000, 48000000}, 45000000)
	assert.InDelta(t, 4242640.687119285, sd, 1e-3)

	assert.Zero(t, sampleStddev([]float64{42000000}, 42000000))
	assert.Equal(t, 0.0, clamp(-0.5, 0, 1))
	assert.Equal(t, 1.0, clamp(1.5, 0, 1))
}
