package export

import (
	"fmt"
	"time"

	"appraisal-backend/internal/valuation"

	"github.com/gofiber/fiber/v2"
)

// POST /api/export/excel
// Accepts a ValuationResult (as returned by /api/valuation/calculate) and responds
// with the rendered .xlsx. Formatting only; no recalculation happens here.
func ExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var result valuation.ValuationResult
		if err := c.BodyParser(&result); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid valuation result payload")
		}
		if len(result.ComparableProperties) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Valuation result has no comparables")
		}

		buf, err := BuildValuationWorkbook(&result)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build workbook")
		}

		filename := fmt.Sprintf("valuation_report_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
		return c.Send(buf.Bytes())
	}
}
