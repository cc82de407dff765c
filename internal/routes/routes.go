package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/zosswater/whatsapp-bot/internal/config"
	"github.com/zosswater/whatsapp-bot/internal/handlers"
	"github.com/zosswater/whatsapp-bot/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes
type Handlers struct {
	WhatsApp *handlers.WhatsAppHandler
	Outreach *handlers.OutreachHandler
	Health   *handlers.HealthHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, h Handlers) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Zoss Water WhatsApp Chatbot is running!",
			"status":  "active",
			"version": h.Health.Version,
			"endpoints": fiber.Map{
				"health":  "/health",
				"webhook": "/webhook/whatsapp",
				"api":     "/api",
			},
		})
	})

	app.Get("/health", h.Health.Check)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// WhatsApp webhook - ENVIRONMENT-AWARE VALIDATION
	inbound := []fiber.Handler{h.WhatsApp.HandleWebhook}
	if cfg.IsDevelopment() || cfg.Webhook.DisableValidation {
		log.Println("⚠️  WhatsApp webhook signature validation DISABLED")
	} else {
		inbound = append([]fiber.Handler{
			middleware.ValidateTwilioSignature(cfg.Twilio.AuthToken, cfg.Webhook.PublicBaseURL),
		}, inbound...)
	}
	webhooks.Post("/whatsapp", inbound...)
	webhooks.Get("/whatsapp", h.WhatsApp.VerifyWebhook)

	// Bare /webhook kept for providers configured before the /whatsapp suffix
	app.Post("/webhook", inbound...)
	app.Get("/webhook", h.WhatsApp.VerifyWebhook)

	// ========== TEST ROUTES (Development Only) ==========
	if cfg.IsDevelopment() {
		app.Post("/test/whatsapp", h.WhatsApp.HandleTestWebhook)
	}

	// ========== ADMIN API ==========
	api := app.Group("/api", middleware.RequireAPIKey(cfg.AdminAPIKey))
	api.Post("/send-welcome", h.Outreach.SendWelcome)
	api.Post("/send-bulk-welcome", h.Outreach.SendBulkWelcome)
	api.Get("/tickets/:ref", h.Outreach.GetTicket)
	api.Get("/customers/:id/tickets", h.Outreach.ListCustomerTickets)
}
