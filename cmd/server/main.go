package main

import (
	"log"
	"strings"

	"appraisal-backend/internal/adjustment"
	"appraisal-backend/internal/analytics"
	"appraisal-backend/internal/audit"
	"appraisal-backend/internal/auth"
	"appraisal-backend/internal/client"
	"appraisal-backend/internal/config"
	"appraisal-backend/internal/database"
	"appraisal-backend/internal/export"
	"appraisal-backend/internal/geo"
	"appraisal-backend/internal/models"
	"appraisal-backend/internal/property"
	"appraisal-backend/internal/valuation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	rates := valuation.DefaultRates()
	if cfg.RatesPath != "" {
		loaded, err := valuation.LoadRatesFromFile(cfg.RatesPath)
		if err != nil {
			log.Printf("[WARN] could not load rate table from %s, using defaults: %v", cfg.RatesPath, err)
		}
		rates = loaded
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Post("/users", auth.CreateUserHandler())

	// Adjustment coefficients (admin tunes the rate table)
	coefficients := protected.Group("/adjustments/coefficients")
	coefficients.Get("", adjustment.ListCoefficientsHandler())
	coefficients.Get("/:id", adjustment.GetCoefficientHandler())
	adminCoefficients := coefficients.Group("")
	adminCoefficients.Use(auth.RequireRole(models.RoleAdmin))
	adminCoefficients.Post("", adjustment.CreateCoefficientHandler())
	adminCoefficients.Put("/:id", adjustment.UpdateCoefficientHandler())
	adminCoefficients.Post("/:id/deactivate", adjustment.DeactivateCoefficientHandler())
	adminCoefficients.Delete("/:id", adjustment.DeleteCoefficientHandler())

	// Properties
	protected.Post("/properties", property.CreatePropertyHandler())
	protected.Get("/properties", property.ListPropertiesHandler())
	protected.Get("/properties/nearby", property.NearbyPropertiesHandler())
	protected.Get("/properties/:id", property.GetPropertyHandler())
	protected.Put("/properties/:id", property.UpdatePropertyHandler())
	protected.Delete("/properties/:id", property.DeletePropertyHandler())

	// Valuation
	protected.Post("/valuation/calculate", valuation.CalculateValuationHandler(rates, cfg.WeightByDistance))
	protected.Get("/valuation/history", valuation.ListHistoryHandler())
	protected.Get("/valuation/history/:id", valuation.GetHistoryItemHandler())

	// Clients
	protected.Post("/clients", client.CreateClientHandler())
	protected.Get("/clients", client.ListClientsHandler())
	protected.Get("/clients/:id", client.GetClientHandler())
	protected.Put("/clients/:id", client.UpdateClientHandler())
	protected.Delete("/clients/:id", client.DeleteClientHandler())

	// Analytics
	protected.Get("/analytics/market-trends", analytics.MarketTrendsHandler())

	// Export
	protected.Post("/export/excel", export.ExcelHandler())

	// Geocoding
	protected.Get("/geo/geocode", geo.GeocodeHandler())
	protected.Get("/geo/reverse", geo.ReverseGeocodeHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
