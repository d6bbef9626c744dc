package property

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"appraisal-backend/internal/audit"
	"appraisal-backend/internal/auth"
	"appraisal-backend/internal/database"
	"appraisal-backend/internal/geo"
	"appraisal-backend/internal/models"
	"appraisal-backend/internal/valuation"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type PropertyRequest struct {
	Address          string              `json:"address"`
	PropertyType     string              `json:"property_type"`
	Area             float64             `json:"area"`
	FloorLevel       int                 `json:"floor_level"`
	TotalFloors      int                 `json:"total_floors"`
	Condition        string              `json:"condition"`
	RenovationStatus string              `json:"renovation_status"`
	Location         valuation.Location  `json:"location"`
	Price            float64             `json:"price"`
	Features         []valuation.Feature `json:"features"`
}

type PropertyResponse struct {
	ID               uint                `json:"id"`
	Address          string              `json:"address"`
	PropertyType     string              `json:"property_type"`
	Area             float64             `json:"area"`
	FloorLevel       int                 `json:"floor_level"`
	TotalFloors      int                 `json:"total_floors"`
	Condition        string              `json:"condition"`
	RenovationStatus string              `json:"renovation_status"`
	Location         valuation.Location  `json:"location"`
	Price            float64             `json:"price"`
	Features         []valuation.Feature `json:"features"`
	CreatedAt        string              `json:"created_at"`
	UpdatedAt        string              `json:"updated_at"`
}

var validTypes = map[string]bool{
	string(models.PropertyTypeApartment):  true,
	string(models.PropertyTypeHouse):      true,
	string(models.PropertyTypeCommercial): true,
	string(models.PropertyTypeLand):       true,
}

func validate(body *PropertyRequest) error {
	if strings.TrimSpace(body.Address) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "address must not be empty")
	}
	if !validTypes[body.PropertyType] {
		return fiber.NewError(fiber.StatusBadRequest, "property_type must be apartment, house, commercial or land")
	}
	if body.Area <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "area must be positive")
	}
	if body.Price <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "price must be positive")
	}
	if body.Location.Lat < -90 || body.Location.Lat > 90 {
		return fiber.NewError(fiber.StatusBadRequest, "location.lat is out of range")
	}
	if body.Location.Lng < -180 || body.Location.Lng > 180 {
		return fiber.NewError(fiber.StatusBadRequest, "location.lng is out of range")
	}
	if body.PropertyType != string(models.PropertyTypeLand) {
		if body.FloorLevel < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "floor_level must be at least 1")
		}
		if body.TotalFloors < body.FloorLevel {
			return fiber.NewError(fiber.StatusBadRequest, "total_floors must be at least floor_level")
		}
	}
	return nil
}

func toModel(body *PropertyRequest, createdBy uint) models.Property {
	featuresJSON := "[]"
	if len(body.Features) > 0 {
		if b, err := json.Marshal(body.Features); err == nil {
			featuresJSON = string(b)
		}
	}
	return models.Property{
		Address:          strings.TrimSpace(body.Address),
		PropertyType:     models.PropertyType(body.PropertyType),
		Area:             body.Area,
		FloorLevel:       body.FloorLevel,
		TotalFloors:      body.TotalFloors,
		Condition:        body.Condition,
		RenovationStatus: body.RenovationStatus,
		Lat:              body.Location.Lat,
		Lng:              body.Location.Lng,
		Price:            body.Price,
		Features:         featuresJSON,
		CreatedBy:        createdBy,
	}
}

func toResponse(p *models.Property) PropertyResponse {
	var features []valuation.Feature
	if p.Features != "" {
		_ = json.Unmarshal([]byte(p.Features), &features)
	}
	return PropertyResponse{
		ID:               p.ID,
		Address:          p.Address,
		PropertyType:     string(p.PropertyType),
		Area:             p.Area,
		FloorLevel:       p.FloorLevel,
		TotalFloors:      p.TotalFloors,
		Condition:        p.Condition,
		RenovationStatus: p.RenovationStatus,
		Location:         valuation.Location{Lat: p.Lat, Lng: p.Lng},
		Price:            p.Price,
		Features:         features,
		CreatedAt:        p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:        p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// -------------------------
// Property CRUD
// -------------------------

// POST /api/properties
func CreatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate(&body); err != nil {
			return err
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		p := toModel(&body, userID)

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save property")
		}

		writeAudit(c, models.AuditActionCreate, &p, nil, fmt.Sprintf("Property added: %s", p.Address))

		return c.Status(fiber.StatusCreated).JSON(toResponse(&p))
	}
}

// GET /api/properties?property_type=&limit=&offset=
func ListPropertiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 100
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		offset, _ := strconv.Atoi(c.Query("offset"))

		query := database.DB.Model(&models.Property{}).Order("created_at desc").Limit(limit).Offset(offset)
		if pt := c.Query("property_type"); pt != "" {
			query = query.Where("property_type = ?", pt)
		}

		var properties []models.Property
		if err := query.Find(&properties).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list properties")
		}

		resp := make([]PropertyResponse, 0, len(properties))
		for i := range properties {
			resp = append(resp, toResponse(&properties[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/properties/:id
func GetPropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Property
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Property not found")
		}
		return c.JSON(toResponse(&p))
	}
}

// PUT /api/properties/:id
func UpdatePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Property
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Property not found")
		}

		var body PropertyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate(&body); err != nil {
			return err
		}

		before := p

		updated := toModel(&body, p.CreatedBy)
		updated.ID = p.ID
		updated.CreatedAt = p.CreatedAt
		if err := database.DB.Save(&updated).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update property")
		}

		writeAudit(c, models.AuditActionUpdate, &updated, before, fmt.Sprintf("Property updated: %s", updated.Address))

		return c.JSON(toResponse(&updated))
	}
}

// DELETE /api/properties/:id
func DeletePropertyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Property
		if err := database.DB.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Property not found")
		}

		if err := database.DB.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete property")
		}

		writeAudit(c, models.AuditActionDelete, &p, p, fmt.Sprintf("Property deleted: %s", p.Address))

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/properties/nearby?lat=&lng=&radius_km=&limit=
func NearbyPropertiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng query parameters are required")
		}

		radiusKm := 5.0
		if v := c.Query("radius_km"); v != "" {
			if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
				radiusKm = r
			}
		}
		limit := 10
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		var properties []models.Property
		if err := database.DB.Find(&properties).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load properties")
		}

		type nearby struct {
			PropertyResponse
			DistanceKm float64 `json:"distance_km"`
		}
		results := make([]nearby, 0, limit)
		for i := range properties {
			d := geo.HaversineKm(lat, lng, properties[i].Lat, properties[i].Lng)
			if d <= radiusKm {
				results = append(results, nearby{
					PropertyResponse: toResponse(&properties[i]),
					DistanceKm:       d,
				})
			}
		}
		sort.Slice(results, func(i, j int) bool { return results[i].DistanceKm < results[j].DistanceKm })
		if len(results) > limit {
			results = results[:limit]
		}

		return c.JSON(results)
	}
}

func writeAudit(c *fiber.Ctx, action models.AuditAction, p *models.Property, before any, description string) {
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
		after = p
	}
	if err := audit.WriteLog(audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  "property",
		EntityID:    p.ID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	}); err != nil {
		log.Printf("audit log write failed: %v", err)
	}
}
