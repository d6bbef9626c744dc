package adjustment

import (
	"fmt"
	"log"
	"strings"

	"appraisal-backend/internal/audit"
	"appraisal-backend/internal/auth"
	"appraisal-backend/internal/database"
	"appraisal-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CoefficientRequest struct {
	FeatureName string   `json:"feature_name"`
	Value       *float64 `json:"value"`
	Description string   `json:"description"`
}

type CoefficientResponse struct {
	ID          uint    `json:"id"`
	FeatureName string  `json:"feature_name"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toResponse(coeff *models.AdjustmentCoefficient) CoefficientResponse {
	return CoefficientResponse{
		ID:          coeff.ID,
		FeatureName: coeff.FeatureName,
		Value:       coeff.Value,
		Description: coeff.Description,
		IsActive:    coeff.IsActive,
		CreatedAt:   coeff.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   coeff.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ActiveOverrides returns feature_name → value for all active coefficients, to be
// overlaid on the configured rate table before a calculation.
func ActiveOverrides() (map[string]float64, error) {
	var coefficients []models.AdjustmentCoefficient
	if err := database.DB.Where("is_active = ?", true).Find(&coefficients).Error; err != nil {
		return nil, fmt.Errorf("load active coefficients: %w", err)
	}
	overrides := make(map[string]float64, len(coefficients))
	for _, coeff := range coefficients {
		overrides[coeff.FeatureName] = coeff.Value
	}
	return overrides, nil
}

// POST /api/adjustments/coefficients
func CreateCoefficientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CoefficientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.FeatureName = strings.TrimSpace(body.FeatureName)
		if body.FeatureName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "feature_name must not be empty")
		}
		if body.Value == nil {
			return fiber.NewError(fiber.StatusBadRequest, "value is required")
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		coeff := models.AdjustmentCoefficient{
			FeatureName: body.FeatureName,
			Value:       *body.Value,
			Description: strings.TrimSpace(body.Description),
			IsActive:    true,
			CreatedBy:   userID,
		}

		if err := database.DB.Create(&coeff).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Could not save coefficient, feature name may already exist")
		}

		writeAudit(c, models.AuditActionCreate, &coeff, nil,
			fmt.Sprintf("Coefficient added: %s = %.2f", coeff.FeatureName, coeff.Value))

		return c.Status(fiber.StatusCreated).JSON(toResponse(&coeff))
	}
}

// GET /api/adjustments/coefficients?active_only=true
func ListCoefficientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Model(&models.AdjustmentCoefficient{}).Order("feature_name asc")
		if c.Query("active_only", "true") == "true" {
			query = query.Where("is_active = ?", true)
		}

		var coefficients []models.AdjustmentCoefficient
		if err := query.Find(&coefficients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list coefficients")
		}

		resp := make([]CoefficientResponse, 0, len(coefficients))
		for i := range coefficients {
			resp = append(resp, toResponse(&coefficients[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/adjustments/coefficients/:id
func GetCoefficientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var coeff models.AdjustmentCoefficient
		if err := database.DB.First(&coeff, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Coefficient not found")
		}
		return c.JSON(toResponse(&coeff))
	}
}

// PUT /api/adjustments/coefficients/:id
func UpdateCoefficientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var coeff models.AdjustmentCoefficient
		if err := database.DB.First(&coeff, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Coefficient not found")
		}

		var body CoefficientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := coeff

		if name := strings.TrimSpace(body.FeatureName); name != "" {
			coeff.FeatureName = name
		}
		if body.Value != nil {
			coeff.Value = *body.Value
		}
		if body.Description != "" {
			coeff.Description = strings.TrimSpace(body.Description)
		}

		if err := database.DB.Save(&coeff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update coefficient")
		}

		writeAudit(c, models.AuditActionUpdate, &coeff, before,
			fmt.Sprintf("Coefficient updated: %s = %.2f", coeff.FeatureName, coeff.Value))

		return c.JSON(toResponse(&coeff))
	}
}

// POST /api/adjustments/coefficients/:id/deactivate
func DeactivateCoefficientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var coeff models.AdjustmentCoefficient
		if err := database.DB.First(&coeff, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Coefficient not found")
		}

		before := coeff
		coeff.IsActive = false
		if err := database.DB.Save(&coeff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not deactivate coefficient")
		}

		writeAudit(c, models.AuditActionUpdate, &coeff, before,
			fmt.Sprintf("Coefficient deactivated: %s", coeff.FeatureName))

		return c.JSON(toResponse(&coeff))
	}
}

// DELETE /api/adjustments/coefficients/:id
func DeleteCoefficientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var coeff models.AdjustmentCoefficient
		if err := database.DB.First(&coeff, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Coefficient not found")
		}

		if err := database.DB.Delete(&coeff).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete coefficient")
		}

		writeAudit(c, models.AuditActionDelete, &coeff, coeff,
			fmt.Sprintf("Coefficient deleted: %s", coeff.FeatureName))

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func writeAudit(c *fiber.Ctx, action models.AuditAction, coeff *models.AdjustmentCoefficient, before any, description string) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return
	}
	var user models.User
	userName := ""
	if err := database.DB.First(&user, userID).Error; err == nil {
		userName = user.Name
	}

	var after any
	if action != models.AuditActionDelete {
		after = coeff
	}
	if err := audit.WriteLog(audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  "adjustment_coefficient",
		EntityID:    coeff.ID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	}); err != nil {
		log.Printf("audit log write failed: %v", err)
	}
}
