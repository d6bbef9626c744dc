package analytics

import (
	"strconv"
	"time"

	"appraisal-backend/internal/database"
	"appraisal-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ConditionGroup struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Stddev float64 `json:"stddev"`
}

type MarketTrendsResponse struct {
	TotalProperties  int                       `json:"total_properties"`
	PriceStats       Summary                   `json:"price_stats"`
	PricePerSqmStats Summary                   `json:"price_per_sqm_stats"`
	ConditionStats   map[string]ConditionGroup `json:"condition_stats"`
}

// GET /api/analytics/market-trends?property_type=&area_min=&area_max=&days=30
func MarketTrendsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := 30
		if v := c.Query("days"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				days = n
			}
		}

		query := database.DB.Model(&models.Property{}).
			Where("created_at >= ?", time.Now().AddDate(0, 0, -days))

		if pt := c.Query("property_type"); pt != "" {
			query = query.Where("property_type = ?", pt)
		}
		if v := c.Query("area_min"); v != "" {
			if min, err := strconv.ParseFloat(v, 64); err == nil {
				query = query.Where("area >= ?", min)
			}
		}
		if v := c.Query("area_max"); v != "" {
			if max, err := strconv.ParseFloat(v, 64); err == nil {
				query = query.Where("area <= ?", max)
			}
		}

		var properties []models.Property
		if err := query.Find(&properties).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load properties")
		}
		if len(properties) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "No properties found for the specified criteria")
		}

		prices := make([]float64, 0, len(properties))
		perSqm := make([]float64, 0, len(properties))
		byCondition := map[string][]float64{}
		for _, p := range properties {
			prices = append(prices, p.Price)
			if p.Area > 0 {
				perSqm = append(perSqm, p.Price/p.Area)
			}
			byCondition[p.Condition] = append(byCondition[p.Condition], p.Price)
		}

		conditionStats := make(map[string]ConditionGroup, len(byCondition))
		for cond, values := range byCondition {
			s := Summarize(values)
			conditionStats[cond] = ConditionGroup{
				Count:  len(values),
				Mean:   s.Mean,
				Median: s.Median,
				Stddev: s.Stddev,
			}
		}

		return c.JSON(MarketTrendsResponse{
			TotalProperties:  len(properties),
			PriceStats:       Summarize(prices),
			PricePerSqmStats: Summarize(perSqm),
			ConditionStats:   conditionStats,
		})
	}
}
