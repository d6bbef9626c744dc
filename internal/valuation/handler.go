package valuation

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"appraisal-backend/internal/adjustment"
	"appraisal-backend/internal/auth"
	"appraisal-backend/internal/database"
	"appraisal-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CalculateRequest struct {
	SubjectProperty      Property   `json:"subject_property"`
	ComparableProperties []Property `json:"comparable_properties"`
}

type HistoryResponse struct {
	ID              uint            `json:"id"`
	Reference       string          `json:"reference"`
	FinalValuation  float64         `json:"final_valuation"`
	ConfidenceScore float64         `json:"confidence_score"`
	Subject         json.RawMessage `json:"subject_property"`
	Comparables     json.RawMessage `json:"comparable_properties"`
	Adjustments     json.RawMessage `json:"adjustments"`
	Warnings        json.RawMessage `json:"warnings,omitempty"`
	CreatedByName   string          `json:"created_by_name"`
	CreatedAt       string          `json:"created_at"`
}

// POST /api/valuation/calculate
//
// The configured rate table is overlaid with active adjustment coefficients on every
// request, so rate tuning takes effect without a restart. The result is persisted to
// history best-effort; a failed save never fails the request.
func CalculateValuationHandler(baseRates RateTable, weightByDistance bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CalculateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		rates := baseRates
		if overrides, err := adjustment.ActiveOverrides(); err != nil {
			log.Printf("coefficient overlay skipped: %v", err)
		} else if len(overrides) > 0 {
			rates = rates.WithOverrides(overrides)
		}

		opts := []Option{}
		if weightByDistance {
			opts = append(opts, WeightByDistance())
		}
		engine := NewEngine(rates, opts...)

		result, err := engine.Calculate(body.SubjectProperty, body.ComparableProperties)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				return fiber.NewError(fiber.StatusBadRequest, vErr.Error())
			}
			if errors.Is(err, ErrInsufficientData) {
				return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Valuation failed")
		}

		saveHistory(c, result)

		return c.JSON(result)
	}
}

func saveHistory(c *fiber.Ctx, result *ValuationResult) {
	userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
	var user models.User
	userName := ""
	if err := database.DB.First(&user, userID).Error; err == nil {
		userName = user.Name
	}

	record := models.ValuationRecord{
		Reference:       uuid.NewString(),
		FinalValuation:  result.FinalValuation,
		ConfidenceScore: result.ConfidenceScore,
		Subject:         marshalOr(result.SubjectProperty, "{}"),
		Comparables:     marshalOr(result.ComparableProperties, "[]"),
		Adjustments:     marshalOr(result.Adjustments, "{}"),
		Warnings:        marshalOr(result.Warnings, "null"),
		CreatedBy:       userID,
		CreatedByName:   userName,
	}

	if err := database.DB.Create(&record).Error; err != nil {
		log.Printf("could not save valuation history: %v", err)
	}
}

func marshalOr(v any, fallback string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(b)
}

// GET /api/valuation/history?limit=&offset=
func ListHistoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 100
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		offset, _ := strconv.Atoi(c.Query("offset"))

		var records []models.ValuationRecord
		if err := database.DB.Order("created_at desc").Limit(limit).Offset(offset).
			Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list valuation history")
		}

		resp := make([]HistoryResponse, 0, len(records))
		for i := range records {
			resp = append(resp, toHistoryResponse(&records[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/valuation/history/:id  (numeric id or reference uuid)
func GetHistoryItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		param := c.Params("id")

		var record models.ValuationRecord
		var err error
		if _, convErr := strconv.ParseUint(param, 10, 64); convErr == nil {
			err = database.DB.First(&record, "id = ?", param).Error
		} else {
			err = database.DB.First(&record, "reference = ?", param).Error
		}
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Valuation history item not found")
		}

		return c.JSON(toHistoryResponse(&record))
	}
}

func toHistoryResponse(record *models.ValuationRecord) HistoryResponse {
	return HistoryResponse{
		ID:              record.ID,
		Reference:       record.Reference,
		FinalValuation:  record.FinalValuation,
		ConfidenceScore: record.ConfidenceScore,
		Subject:         json.RawMessage(record.Subject),
		Comparables:     json.RawMessage(record.Comparables),
		Adjustments:     json.RawMessage(record.Adjustments),
		Warnings:        json.RawMessage(record.Warnings),
		CreatedByName:   record.CreatedByName,
		CreatedAt:       record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
