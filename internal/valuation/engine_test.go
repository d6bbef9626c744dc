package valuation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// almaty city center, used by most fixtures so distance adjustments stay zero unless a
// test moves a comparable on purpose.
var almaty = Location{Lat: 43.2220, Lng: 76.8512}

func testProperty(id string, price float64) Property {
	return Property{
		ID:               id,
		Address:          "Abay Ave 10, Almaty",
		PropertyType:     TypeApartment,
		Area:             85,
		FloorLevel:       5,
		TotalFloors:      12,
		Condition:        ConditionGood,
		RenovationStatus: RenovationRecent,
		Location:         almaty,
		Price:            price,
	}
}

func adjustmentValue(t *testing.T, adjs []Adjustment, feature string) float64 {
	t.Helper()
	for _, a := range adjs {
		if a.Feature == feature {
			return a.Value
		}
	}
	t.Fatalf("no %q adjustment in %v", feature, adjs)
	return 0
}

func TestCalculateSingleComparable(t *testing.T) {
	engine := NewEngine(DefaultRates())

	subject := testProperty("", 45000000)
	comp := testProperty("comp-1", 42000000)
	comp.Area = 80
	comp.FloorLevel = 3

	result, err := engine.Calculate(subject, []Property{comp})
	require.NoError(t, err)

	adjs := result.Adjustments["comp-1"]
	require.NotEmpty(t, adjs)

	assert.Equal(t, 500.0, adjustmentValue(t, adjs, "area"))       // (85-80) * 100
	assert.Equal(t, 4000.0, adjustmentValue(t, adjs, "floor"))     // (5-3) * 2000
	assert.Equal(t, 0.0, adjustmentValue(t, adjs, "condition"))
	assert.Equal(t, 0.0, adjustmentValue(t, adjs, "renovation"))
	assert.Equal(t, 0.0, adjustmentValue(t, adjs, "distance"))

	// N=1: final valuation is the single adjusted price, confidence scaled by 1/3
	assert.Equal(t, 42004500.0, result.FinalValuation)
	assert.InDelta(t, 1.0/3.0, result.ConfidenceScore, 1e-12)
	assert.Empty(t, result.Warnings)
}

func TestCalculateIsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultRates())

	subject := testProperty("", 45000000)
	comp := testProperty("comp-1", 42000000)
	comp.Area = 74
	comp.Condition = ConditionFair
	comp.Location = Location{Lat: 43.25, Lng: 76.91}

	first, err := engine.Calculate(subject, []Property{comp})
	require.NoError(t, err)
	second, err := engine.Calculate(subject, []Property{comp})
	require.NoError(t, err)

	assert.Equal(t, first.FinalValuation, second.FinalValuation)
	assert.Equal(t, first.ConfidenceScore, second.ConfidenceScore)
	assert.Equal(t, first.Adjustments["comp-1"], second.Adjustments["comp-1"])
}

func TestAdjustmentSymmetry(t *testing.T) {
	engine := NewEngine(DefaultRates())

	a := testProperty("a", 40000000)
	b := testProperty("b", 43000000)
	b.Area = 92
	b.FloorLevel = 2
	b.Condition = ConditionExcellent
	b.RenovationStatus = RenovationPartial

	forward, err := engine.Calculate(a, []Property{b})
	require.NoError(t, err)
	backward, err := engine.Calculate(b, []Property{a})
	require.NoError(t, err)

	for _, feature := range []string{"area", "floor", "condition", "renovation"} {
		fw := adjustmentValue(t, forward.Adjustments["b"], feature)
		bw := adjustmentValue(t, backward.Adjustments["a"], feature)
		assert.InDelta(t, -fw, bw, 1e-9, "feature %s", feature)
	}
}

func TestIdenticalPropertiesYieldZeroAdjustments(t *testing.T) {
	engine := NewEngine(DefaultRates())

	subject := testProperty("", 45000000)
	comp := testProperty("twin", 45000000)

	result, err := engine.Calculate(subject, []Property{comp})
	require.NoError(t, err)

	for _, adj := range result.Adjustments["twin"] {
		assert.Zerof(t, adj.Value, "feature %s", adj.Feature)
	}
	assert.Equal(t, 45000000.0, result.FinalValuation)
}

func TestAdjustedPriceClampedAtZero(t *testing.T) {
	engine := NewEngine(DefaultRates())

	// Comparable vastly larger than the subject: the area adjustment alone drives the
	// tiny price far below zero.
	subject := testProperty("", 0)
	subject.Area = 30
	comp := testProperty("big", 1000)
	comp.Area = 500

	result, err := engine.Calculate(subject, []Property{comp})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.FinalValuation)
	assert.Equal(t, 0.0, result.ConfidenceScore)
	assert.Contains(t, result.Warnings, WarningDegenerateResult)
}

func TestClampedComparableLowersConfidence(t *testing.T) {
	engine := NewEngine(DefaultRates())

	subject := testProperty("", 0)
	subject.Area = 30
	good := testProperty("good", 42000000)
	good.Area = 30
	clamped := testProperty("clamped", 1000)
	clamped.Area = 500

	mixed, err := engine.Calculate(subject, []Property{good, clamped})
	require.NoError(t, err)

	// The clamped comparable is excluded from the estimator entirely.
	assert.Equal(t, 42000000.0, mixed.FinalValuation)

	clean, err := engine.Calculate(subject, []Property{good, good})
	require.NoError(t, err)
	assert.Less(t, mixed.ConfidenceScore, clean.ConfidenceScore)
}

func TestInsufficientData(t *testing.T) {
	engine := NewEngine(DefaultRates())

	_, err := engine.Calculate(testProperty("", 45000000), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestConfidenceGrowsWithComparableCount(t *testing.T) {
	engine := NewEngine(DefaultRates())
	subject := testProperty("", 45000000)

	prev := -1.0
	for n := 1; n <= 3; n++ {
		comps := make([]Property, n)
		for i := range comps {
			comps[i] = testProperty("", 42000000)
		}
		result, err := engine.Calculate(subject, comps)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.ConfidenceScore, prev, "n=%d", n)
		prev = result.ConfidenceScore
	}
}

func TestDispersionLowersConfidence(t *testing.T) {
	engine := NewEngine(DefaultRates())
	subject := testProperty("", 45000000)

	spread, err := engine.Calculate(subject, []Property{
		testProperty("low", 42000000),
		testProperty("high", 48000000),
	})
	require.NoError(t, err)
	assert.Equal(t, 45000000.0, spread.FinalValuation)
	assert.Greater(t, spread.AdjustedPriceStats.Stddev, 0.0)

	tight, err := engine.Calculate(subject, []Property{
		testProperty("a", 45000000),
		testProperty("b", 45000000),
	})
	require.NoError(t, err)
	assert.Equal(t, 45000000.0, tight.FinalValuation)
	assert.Zero(t, tight.AdjustedPriceStats.Stddev)

	assert.Less(t, spread.ConfidenceScore, tight.ConfidenceScore)
}

func TestDistanceAdjustmentIsDownward(t *testing.T) {
	engine := NewEngine(DefaultRates())

	subject := testProperty("", 45000000)
	far := testProperty("far", 45000000)
	far.Location = Location{Lat: 43.30, Lng: 76.95}

	result, err := engine.Calculate(subject, []Property{far})
	require.NoError(t, err)

	assert.Negative(t, adjustmentValue(t, result.Adjustments["far"], "distance"))
}

func TestWeightByDistanceFavorsCloserComparables(t *testing.T) {
	rates := DefaultRates()
	rates.DistanceRatePerKm = 0 // isolate the weighting from the distance rule

	near := testProperty("near", 40000000)
	far := testProperty("far", 50000000)
	far.Location = Location{Lat: 43.40, Lng: 77.10}
	subject := testProperty("", 45000000)

	unweighted, err := NewEngine(rates).Calculate(subject, []Property{near, far})
	require.NoError(t, err)
	weighted, err := NewEngine(rates, WeightByDistance()).Calculate(subject, []Property{near, far})
	require.NoError(t, err)

	assert.Equal(t, 45000000.0, unweighted.FinalValuation)
	// The near (cheaper) comparable carries more weight, pulling the estimate down.
	assert.Less(t, weighted.FinalValuation, unweighted.FinalValuation)
	assert.Greater(t, weighted.FinalValuation, 40000000.0)
}

func TestLandParcelsSkipFloorRule(t *testing.T) {
	engine := NewEngine(DefaultRates())

	subject := testProperty("", 45000000)
	subject.PropertyType = TypeLand
	subject.FloorLevel = 0
	subject.TotalFloors = 0
	comp := testProperty("plot", 42000000)
	comp.PropertyType = TypeLand
	comp.FloorLevel = 0
	comp.TotalFloors = 0

	result, err := engine.Calculate(subject, []Property{comp})
	require.NoError(t, err)

	for _, adj := range result.Adjustments["plot"] {
		assert.NotEqual(t, "floor", adj.Feature)
	}
}

func TestCustomFeatureAdjustments(t *testing.T) {
	rates := DefaultRates()
	rates.FeatureRates["parking_spots"] = 50

	subject := testProperty("", 45000000)
	subject.Features = []Feature{
		{Name: "parking_spots", Value: 2, Unit: "spots"},
		{Name: "balconies", Value: 1},
	}
	comp := testProperty("comp-1", 42000000)
	comp.Features = []Feature{
		{Name: "parking_spots", Value: 1, Unit: "spots"},
		{Name: "balconies", Value: 3},
	}

	result, err := NewEngine(rates).Calculate(subject, []Property{comp})
	require.NoError(t, err)

	adjs := result.Adjustments["comp-1"]
	assert.Equal(t, 50.0, adjustmentValue(t, adjs, "parking_spots"))

	// No rate configured for balconies: skipped silently, never an error.
	for _, adj := range adjs {
		assert.NotEqual(t, "balconies", adj.Feature)
	}
}

func TestValidationErrors(t *testing.T) {
	engine := NewEngine(DefaultRates())
	subject := testProperty("", 45000000)

	tests := []struct {
		name    string
		mutate  func(*Property)
		role    string
		field   string
	}{
		{"missing area", func(p *Property) { p.Area = 0 }, "comparable[0]", "area"},
		{"missing price", func(p *Property) { p.Price = 0 }, "comparable[0]", "price"},
		{"bad latitude", func(p *Property) { p.Location.Lat = 95 }, "comparable[0]", "location.lat"},
		{"bad longitude", func(p *Property) { p.Location.Lng = -200 }, "comparable[0]", "location.lng"},
		{"empty address", func(p *Property) { p.Address = "" }, "comparable[0]", "address"},
		{"floor below ground", func(p *Property) { p.FloorLevel = 0 }, "comparable[0]", "floor_level"},
		{"total floors too small", func(p *Property) { p.TotalFloors = 2 }, "comparable[0]", "total_floors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := testProperty("comp-1", 42000000)
			tt.mutate(&comp)

			_, err := engine.Calculate(subject, []Property{comp})
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.role, vErr.Role)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	t.Run("subject validated first", func(t *testing.T) {
		bad := subject
		bad.Area = -1
		_, err := engine.Calculate(bad, []Property{testProperty("comp-1", 42000000)})
		require.Error(t, err)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, RoleSubject, vErr.Role)
		assert.Equal(t, "area", vErr.Field)
	})

	t.Run("subject price optional", func(t *testing.T) {
		noPrice := subject
		noPrice.Price = 0
		_, err := engine.Calculate(noPrice, []Property{testProperty("comp-1", 42000000)})
		require.NoError(t, err)
	})
}

func TestComparablesWithoutIDGetOne(t *testing.T) {
	engine := NewEngine(DefaultRates())

	result, err := engine.Calculate(testProperty("", 45000000), []Property{testProperty("", 42000000)})
	require.NoError(t, err)

	require.Len(t, result.ComparableProperties, 1)
	id := result.ComparableProperties[0].ID
	assert.NotEmpty(t, id)
	assert.Contains(t, result.Adjustments, id)
}
