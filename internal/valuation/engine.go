package valuation

import (
	"math"
	"time"

	"appraisal-backend/internal/geo"

	"github.com/google/uuid"
)

// Engine computes sales-comparison valuations: per-feature adjustments for every
// (subject, comparable) pair, an adjusted price per comparable, and one aggregated
// valuation with a confidence score. It holds no mutable state; one Engine may serve
// any number of concurrent requests.
type Engine struct {
	rates            RateTable
	weightByDistance bool
}

type Option func(*Engine)

// WeightByDistance makes the aggregator weight each comparable by 1/(1+distance_km)
// instead of using the plain arithmetic mean.
func WeightByDistance() Option {
	return func(e *Engine) { e.weightByDistance = true }
}

func NewEngine(rates RateTable, opts ...Option) *Engine {
	e := &Engine{rates: rates}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate runs the full pipeline for one subject and its comparables. Validation
// failures abort before any computation; a degenerate result (every comparable clamped
// to zero) is still returned, with confidence 0 and a warning.
func (e *Engine) Calculate(subject Property, comparables []Property) (*ValuationResult, error) {
	if err := validateProperty(subject, RoleSubject, false); err != nil {
		return nil, err
	}
	if len(comparables) == 0 {
		return nil, ErrInsufficientData
	}
	for i, comp := range comparables {
		if err := validateProperty(comp, comparableRole(i), true); err != nil {
			return nil, err
		}
	}

	adjustments := make(map[string][]Adjustment, len(comparables))
	normalized := make([]comparablePrice, 0, len(comparables))
	echoed := make([]Property, 0, len(comparables))

	for _, comp := range comparables {
		if comp.ID == "" {
			comp.ID = uuid.NewString()
		}
		adjs := e.adjustmentsFor(subject, comp)
		adjustments[comp.ID] = adjs
		normalized = append(normalized, normalize(comp, adjs, distanceKm(subject, comp)))
		echoed = append(echoed, comp)
	}

	final, confidence, stats, warnings := e.aggregate(normalized)

	return &ValuationResult{
		SubjectProperty:      subject,
		ComparableProperties: echoed,
		Adjustments:          adjustments,
		FinalValuation:       final,
		ConfidenceScore:      confidence,
		AdjustedPriceStats:   stats,
		Warnings:             warnings,
		CreatedAt:            time.Now().UTC(),
	}, nil
}

// ---- stage 1: feature adjuster ----

// adjustmentsFor computes the full adjustment list for one (subject, comparable) pair.
// Every rule reads only raw subject/comparable attributes; no rule depends on another
// rule's output or on other comparables.
func (e *Engine) adjustmentsFor(subject, comp Property) []Adjustment {
	adjs := []Adjustment{
		{Feature: "area", Value: (subject.Area - comp.Area) * e.rates.AreaRatePerSqm},
	}

	// Floors are meaningless for land parcels.
	if subject.PropertyType != TypeLand && comp.PropertyType != TypeLand {
		adjs = append(adjs, Adjustment{
			Feature: "floor",
			Value:   float64(subject.FloorLevel-comp.FloorLevel) * e.rates.FloorRate,
		})
	}

	adjs = append(adjs,
		Adjustment{
			Feature: "condition",
			Value:   (subject.Condition.score() - comp.Condition.score()) * e.rates.ConditionMagnitude,
		},
		Adjustment{
			Feature: "renovation",
			Value:   (subject.RenovationStatus.score() - comp.RenovationStatus.score()) * e.rates.RenovationMagnitude,
		},
		// Farther comparables are adjusted downward.
		Adjustment{
			Feature: "distance",
			Value:   -distanceKm(subject, comp) * e.rates.DistanceRatePerKm,
		},
	)

	// Custom features scored only when present on both properties and a rate is
	// configured; unscored features never fail the valuation.
	for _, f := range subject.Features {
		rate, ok := e.rates.FeatureRates[f.Name]
		if !ok {
			continue
		}
		if cf, found := findFeature(comp.Features, f.Name); found {
			adjs = append(adjs, Adjustment{
				Feature: f.Name,
				Value:   (f.Value - cf.Value) * rate,
			})
		}
	}

	return adjs
}

func findFeature(features []Feature, name string) (Feature, bool) {
	for _, f := range features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

func distanceKm(subject, comp Property) float64 {
	return geo.HaversineKm(subject.Location.Lat, subject.Location.Lng, comp.Location.Lat, comp.Location.Lng)
}

// ---- stage 2: comparable normalizer ----

type comparablePrice struct {
	adjusted   float64
	distanceKm float64
	// clamped marks a comparable whose summed adjustments drove the price to (or
	// below) zero; the aggregator treats it as low confidence.
	clamped bool
}

func normalize(comp Property, adjs []Adjustment, km float64) comparablePrice {
	adjusted := comp.Price
	for _, a := range adjs {
		adjusted += a.Value
	}
	if adjusted <= 0 {
		return comparablePrice{adjusted: 0, distanceKm: km, clamped: true}
	}
	return comparablePrice{adjusted: adjusted, distanceKm: km}
}

// ---- stage 3: valuation aggregator ----

// aggregate reduces the adjusted prices to a final valuation and confidence score.
//
// Clamped comparables are excluded from the estimator. Confidence is
// clamp(1 − stddev/mean, 0, 1) over the usable prices, scaled by min(1, N/3) for thin
// comparable sets and by usable/N for clamped ones; each factor is monotonic in the
// direction more data / less dispersion ⇒ higher confidence.
func (e *Engine) aggregate(prices []comparablePrice) (final, confidence float64, stats PriceStats, warnings []string) {
	n := len(prices)

	usable := make([]comparablePrice, 0, n)
	for _, p := range prices {
		if !p.clamped {
			usable = append(usable, p)
		}
	}

	if len(usable) == 0 {
		return 0, 0, PriceStats{}, []string{WarningDegenerateResult}
	}

	values := make([]float64, len(usable))
	for i, p := range usable {
		values[i] = p.adjusted
	}
	m := mean(values)

	if e.weightByDistance {
		var sum, sumW float64
		for _, p := range usable {
			w := 1 / (1 + p.distanceKm)
			sum += w * p.adjusted
			sumW += w
		}
		final = sum / sumW
	} else {
		final = m
	}

	// Sample standard deviation; 0 by definition for a single comparable.
	sd := sampleStddev(values, m)
	stats = PriceStats{Mean: m, Median: median(values), Stddev: sd}

	confidence = clamp(1-sd/m, 0, 1)
	confidence *= math.Min(1, float64(n)/3)
	confidence *= float64(len(usable)) / float64(n)

	return final, confidence, stats, nil
}

func validateProperty(p Property, role string, priceRequired bool) error {
	if p.Address == "" {
		return &ValidationError{Role: role, Field: "address", Msg: "must not be empty"}
	}
	if !(p.Area > 0) {
		return &ValidationError{Role: role, Field: "area", Msg: "must be a positive number"}
	}
	if priceRequired && !(p.Price > 0) {
		return &ValidationError{Role: role, Field: "price", Msg: "must be a positive number"}
	}
	if math.Abs(p.Location.Lat) > 90 {
		return &ValidationError{Role: role, Field: "location.lat", Msg: "must be within [-90, 90]"}
	}
	if math.Abs(p.Location.Lng) > 180 {
		return &ValidationError{Role: role, Field: "location.lng", Msg: "must be within [-180, 180]"}
	}
	if p.PropertyType != TypeLand {
		if p.FloorLevel < 1 {
			return &ValidationError{Role: role, Field: "floor_level", Msg: "must be at least 1"}
		}
		if p.TotalFloors < p.FloorLevel {
			return &ValidationError{Role: role, Field: "total_floors", Msg: "must be at least floor_level"}
		}
	}
	return nil
}
