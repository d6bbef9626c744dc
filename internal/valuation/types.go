package valuation

import "time"

type PropertyType string

const (
	TypeApartment  PropertyType = "apartment"
	TypeHouse      PropertyType = "house"
	TypeCommercial PropertyType = "commercial"
	TypeLand       PropertyType = "land"
)

// Condition of a property, ordered worst to best.
type Condition string

const (
	ConditionPoor      Condition = "poor"
	ConditionFair      Condition = "fair"
	ConditionGood      Condition = "good"
	ConditionExcellent Condition = "excellent"
)

// conditionScores maps each condition to its ordinal score. Unknown values fall back
// to the fair score so a single odd record does not sink the whole request.
var conditionScores = map[Condition]float64{
	ConditionPoor:      0.7,
	ConditionFair:      0.8,
	ConditionGood:      0.9,
	ConditionExcellent: 1.0,
}

func (c Condition) score() float64 {
	if s, ok := conditionScores[c]; ok {
		return s
	}
	return conditionScores[ConditionFair]
}

// RenovationStatus, ordered original < needsRenovation < partiallyRenovated <
// recentlyRenovated.
type RenovationStatus string

const (
	RenovationOriginal RenovationStatus = "original"
	RenovationNeeded   RenovationStatus = "needsRenovation"
	RenovationPartial  RenovationStatus = "partiallyRenovated"
	RenovationRecent   RenovationStatus = "recentlyRenovated"
)

var renovationScores = map[RenovationStatus]float64{
	RenovationOriginal: 0.4,
	RenovationNeeded:   0.6,
	RenovationPartial:  0.8,
	RenovationRecent:   1.0,
}

func (r RenovationStatus) score() float64 {
	if s, ok := renovationScores[r]; ok {
		return s
	}
	return renovationScores[RenovationOriginal]
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Feature is an open-ended custom attribute, e.g. {"parking_spots", 2, "spots"}.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Property is the value object the engine operates on, for both the subject and the
// comparables. It is never mutated after construction.
type Property struct {
	ID               string           `json:"id,omitempty"`
	Address          string           `json:"address"`
	PropertyType     PropertyType     `json:"property_type"`
	Area             float64          `json:"area"`
	FloorLevel       int              `json:"floor_level"`
	TotalFloors      int              `json:"total_floors"`
	Condition        Condition        `json:"condition"`
	RenovationStatus RenovationStatus `json:"renovation_status"`
	Location         Location         `json:"location"`
	Price            float64          `json:"price,omitempty"`
	Features         []Feature        `json:"features,omitempty"`
}

// Adjustment is one named delta applied to a comparable's price. Positive means the
// comparable is adjusted upward (subject superior along that dimension), negative
// downward.
type Adjustment struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// PriceStats summarizes the adjusted prices that fed the estimator; shown alongside
// the final valuation in the UI.
type PriceStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Stddev float64 `json:"stddev"`
}

// ValuationResult is the engine output for one request.
type ValuationResult struct {
	SubjectProperty      Property                `json:"subject_property"`
	ComparableProperties []Property              `json:"comparable_properties"`
	Adjustments          map[string][]Adjustment `json:"adjustments"`
	FinalValuation       float64                 `json:"final_valuation"`
	ConfidenceScore      float64                 `json:"confidence_score"`
	AdjustedPriceStats   PriceStats              `json:"adjusted_price_stats"`
	Warnings             []string                `json:"warnings,omitempty"`
	CreatedAt            time.Time               `json:"created_at"`
}
