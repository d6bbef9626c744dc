package export

import (
	"testing"

	"appraisal-backend/internal/valuation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testResult() *valuation.ValuationResult {
	return &valuation.ValuationResult{
		SubjectProperty: valuation.Property{
			Address:          "Abay Ave 10, Almaty",
			PropertyType:     valuation.TypeApartment,
			Area:             85,
			FloorLevel:       5,
			TotalFloors:      12,
			Condition:        valuation.ConditionGood,
			RenovationStatus: valuation.RenovationRecent,
		},
		ComparableProperties: []valuation.Property{
			{
				ID:      "comp-1",
				Address: "Dostyk Ave 5, Almaty",
				Area:    80,
				Price:   42000000,
			},
		},
		Adjustments: map[string][]valuation.Adjustment{
			"comp-1": {
				{Feature: "area", Value: 500},
				{Feature: "floor", Value: 4000},
			},
		},
		FinalValuation:  42004500,
		ConfidenceScore: 1.0 / 3.0,
		AdjustedPriceStats: valuation.PriceStats{
			Mean:   42004500,
			Median: 42004500,
		},
	}
}

func TestBuildValuationWorkbook(t *testing.T) {
	buf, err := BuildValuationWorkbook(testResult())
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Valuation", "Adjustments"}, f.GetSheetList())

	title, err := f.GetCellValue("Valuation", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Property Valuation Report", title)

	address, err := f.GetCellValue("Valuation", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Abay Ave 10, Almaty", address)

	finalVal, err := f.GetCellValue("Valuation", "B10")
	require.NoError(t, err)
	assert.Equal(t, "42004500", finalVal)

	// Adjustment breakdown rows
	feature, err := f.GetCellValue("Adjustments", "C2")
	require.NoError(t, err)
	assert.Equal(t, "area", feature)

	value, err := f.GetCellValue("Adjustments", "D3")
	require.NoError(t, err)
	assert.Equal(t, "4000", value)
}
