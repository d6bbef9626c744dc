package client

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"appraisal-backend/internal/audit"
	"appraisal-backend/internal/auth"
	"appraisal-backend/internal/database"
	"appraisal-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

type ClientResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(cl *models.Client) ClientResponse {
	return ClientResponse{
		ID:        cl.ID,
		Name:      cl.Name,
		Email:     cl.Email,
		Phone:     cl.Phone,
		Company:   cl.Company,
		Notes:     cl.Notes,
		CreatedAt: cl.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: cl.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// POST /api/clients
func CreateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name must not be empty")
		}

		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		cl := models.Client{
			Name:      strings.TrimSpace(body.Name),
			Email:     strings.TrimSpace(strings.ToLower(body.Email)),
			Phone:     strings.TrimSpace(body.Phone),
			Company:   strings.TrimSpace(body.Company),
			Notes:     body.Notes,
			CreatedBy: userID,
		}

		if err := database.DB.Create(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save client")
		}

		writeAudit(c, models.AuditActionCreate, &cl, nil, fmt.Sprintf("Client added: %s", cl.Name))

		return c.Status(fiber.StatusCreated).JSON(toResponse(&cl))
	}
}

// GET /api/clients?search=&limit=&offset=
func ListClientsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 100
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		offset, _ := strconv.Atoi(c.Query("offset"))

		query := database.DB.Model(&models.Client{}).Order("created_at desc").Limit(limit).Offset(offset)
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			pattern := "%" + search + "%"
			query = query.Where("name ILIKE ? OR email ILIKE ? OR company ILIKE ?", pattern, pattern, pattern)
		}

		var clients []models.Client
		if err := query.Find(&clients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list clients")
		}

		resp := make([]ClientResponse, 0, len(clients))
		for i := range clients {
			resp = append(resp, toResponse(&clients[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/clients/:id
func GetClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cl models.Client
		if err := database.DB.First(&cl, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}
		return c.JSON(toResponse(&cl))
	}
}

// PUT /api/clients/:id
func UpdateClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cl models.Client
		if err := database.DB.First(&cl, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}

		var body ClientRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name must not be empty")
		}

		before := cl

		cl.Name = strings.TrimSpace(body.Name)
		cl.Email = strings.TrimSpace(strings.ToLower(body.Email))
		cl.Phone = strings.TrimSpace(body.Phone)
		cl.Company = strings.TrimSpace(body.Company)
		cl.Notes = body.Notes

		if err := database.DB.Save(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update client")
		}

		writeAudit(c, models.AuditActionUpdate, &cl, before, fmt.Sprintf("Client updated: %s", cl.Name))

		return c.JSON(toResponse(&cl))
	}
}

// DELETE /api/clients/:id
func DeleteClientHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cl models.Client
		if err := database.DB.First(&cl, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Client not found")
		}

		if err := database.DB.Delete(&cl).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete client")
		}

		writeAudit(c, models.AuditActionDelete, &cl, cl, fmt.Sprintf("Client deleted: %s", cl.Name))

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func writeAudit(c *fiber.Ctx, action models.AuditAction, cl *models.Client, before any, description string) {
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
		after = cl
	}
	if err := audit.WriteLog(audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  "client",
		EntityID:    cl.ID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	}); err != nil {
		log.Printf("audit log write failed: %v", err)
	}
}
