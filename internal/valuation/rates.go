package valuation

import (
	"encoding/json"
	"fmt"
	"os"
)

// RateTable holds the adjustment rates. All amounts are flat deltas in the same
// currency unit as property prices; the rates are configuration, not business law, and
// can be overridden by a JSON file or by active adjustment coefficients.
type RateTable struct {
	// Currency per m² of area difference.
	AreaRatePerSqm float64 `json:"area_rate_per_sqm"`
	// Currency per floor of difference. Ignored for land parcels.
	FloorRate float64 `json:"floor_rate"`
	// Multiplied by the ordinal condition score difference (0.7..1.0 scale).
	ConditionMagnitude float64 `json:"condition_magnitude"`
	// Multiplied by the ordinal renovation score difference (0.4..1.0 scale).
	RenovationMagnitude float64 `json:"renovation_magnitude"`
	// Currency per km of distance between subject and comparable, applied as a
	// downward adjustment on the comparable.
	DistanceRatePerKm float64 `json:"distance_rate_per_km"`
	// Per-unit rates for custom features, keyed by feature name. Features without a
	// configured rate are skipped silently.
	FeatureRates map[string]float64 `json:"feature_rates"`
}

// DefaultRates returns the baseline rate table.
func DefaultRates() RateTable {
	return RateTable{
		AreaRatePerSqm:      100,
		FloorRate:           2000,
		ConditionMagnitude:  5000,
		RenovationMagnitude: 8000,
		DistanceRatePerKm:   500,
		FeatureRates:        map[string]float64{},
	}
}

// LoadRatesFromFile loads a rate table from a JSON file, falling back to defaults on
// read errors.
func LoadRatesFromFile(path string) (RateTable, error) {
	rt := DefaultRates()
	b, err := os.ReadFile(path)
	if err != nil {
		return rt, fmt.Errorf("read rates file: %w", err)
	}
	if err := json.Unmarshal(b, &rt); err != nil {
		return DefaultRates(), fmt.Errorf("unmarshal rates: %w", err)
	}
	if rt.FeatureRates == nil {
		rt.FeatureRates = map[string]float64{}
	}
	return rt, nil
}

// WithOverrides returns a copy of the table with named rates replaced. Known keys
// ("area", "floor", "condition", "renovation", "distance") override the built-in rules;
// any other key becomes a custom feature rate.
func (rt RateTable) WithOverrides(overrides map[string]float64) RateTable {
	out := rt
	out.FeatureRates = make(map[string]float64, len(rt.FeatureRates)+len(overrides))
	for k, v := range rt.FeatureRates {
		out.FeatureRates[k] = v
	}
	for name, value := range overrides {
		switch name {
		case "area":
			out.AreaRatePerSqm = value
		case "floor":
			out.FloorRate = value
		case "condition":
			out.ConditionMagnitude = value
		case "renovation":
			out.RenovationMagnitude = value
		case "distance":
			out.DistanceRatePerKm = value
		default:
			out.FeatureRates[name] = value
		}
	}
	return out
}
