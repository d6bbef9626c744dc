package export

import (
	"bytes"
	"fmt"

	"appraisal-backend/internal/valuation"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet     = "Valuation"
	adjustmentsSheet = "Adjustments"
)

// BuildValuationWorkbook renders a valuation result as an .xlsx workbook: a summary
// sheet with the subject, the final figure and the comparables, and a breakdown sheet
// with every adjustment per comparable.
func BuildValuationWorkbook(result *valuation.ValuationResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(adjustmentsSheet); err != nil {
		return nil, fmt.Errorf("create adjustments sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D7E4BC"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, result, headerStyle); err != nil {
		return nil, err
	}
	if err := writeAdjustments(f, result, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}

func writeSummary(f *excelize.File, result *valuation.ValuationResult, headerStyle int) error {
	rows := [][]any{
		{"Property Valuation Report", ""},
		{"", ""},
		{"Address", result.SubjectProperty.Address},
		{"Type", string(result.SubjectProperty.PropertyType)},
		{"Area (m²)", result.SubjectProperty.Area},
		{"Floor", fmt.Sprintf("%d of %d", result.SubjectProperty.FloorLevel, result.SubjectProperty.TotalFloors)},
		{"Condition", string(result.SubjectProperty.Condition)},
		{"Renovation", string(result.SubjectProperty.RenovationStatus)},
		{"", ""},
		{"Final Valuation", result.FinalValuation},
		{"Confidence Score", result.ConfidenceScore},
		{"Adjusted Price Mean", result.AdjustedPriceStats.Mean},
		{"Adjusted Price Median", result.AdjustedPriceStats.Median},
		{"Adjusted Price Stddev", result.AdjustedPriceStats.Stddev},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", headerStyle); err != nil {
		return err
	}

	// Comparables table below the summary block
	start := len(rows) + 2
	header := []any{"#", "Address", "Area (m²)", "Price", "Adjustment Total", "Adjusted Price"}
	cell, err := excelize.CoordinatesToCellName(1, start)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, cell, &header); err != nil {
		return err
	}
	endCell, err := excelize.CoordinatesToCellName(len(header), start)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, cell, endCell, headerStyle); err != nil {
		return err
	}

	for i, comp := range result.ComparableProperties {
		var total float64
		for _, adj := range result.Adjustments[comp.ID] {
			total += adj.Value
		}
		adjusted := comp.Price + total
		if adjusted < 0 {
			adjusted = 0
		}
		row := []any{i + 1, comp.Address, comp.Area, comp.Price, total, adjusted}
		cell, err := excelize.CoordinatesToCellName(1, start+1+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SetColWidth(summarySheet, "A", "B", 28)
}

func writeAdjustments(f *excelize.File, result *valuation.ValuationResult, headerStyle int) error {
	header := []any{"Comparable", "Address", "Feature", "Adjustment"}
	if err := f.SetSheetRow(adjustmentsSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(adjustmentsSheet, "A1", "D1", headerStyle); err != nil {
		return err
	}

	rowIdx := 2
	for i, comp := range result.ComparableProperties {
		for _, adj := range result.Adjustments[comp.ID] {
			row := []any{i + 1, comp.Address, adj.Feature, adj.Value}
			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(adjustmentsSheet, cell, &row); err != nil {
				return err
			}
			rowIdx++
		}
	}

	return f.SetColWidth(adjustmentsSheet, "B", "B", 36)
}
