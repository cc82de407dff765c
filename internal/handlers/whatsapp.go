package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/zosswater/whatsapp-bot/internal/services"
)

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	whatsappService *services.WhatsAppService
	verifyToken     string
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(whatsappService *services.WhatsAppService, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{
		whatsappService: whatsappService,
		verifyToken:     verifyToken,
	}
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid    string `form:"MessageSid"`
	AccountSid    string `form:"AccountSid"`
	From          string `form:"From"` // WhatsApp number (whatsapp:+919876543210)
	To            string `form:"To"`   // Your Twilio number
	Body          string `form:"Body"` // Message text
	ProfileName   string `form:"ProfileName"`
	NumMedia      string `form:"NumMedia"`
	MessageStatus string `form:"MessageStatus"` // set on delivery status callbacks only
}

// HandleWebhook processes incoming WhatsApp messages
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload

	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Delivery receipts share the endpoint; acknowledge and ignore them
	if payload.MessageStatus != "" && payload.Body == "" {
		log.Printf("📬 Status %s for message %s", payload.MessageStatus, payload.MessageSid)
		return c.SendStatus(fiber.StatusOK)
	}

	err := h.whatsappService.HandleInbound(c.UserContext(), services.InboundMessage{
		From:        payload.From,
		Body:        payload.Body,
		ProfileName: payload.ProfileName,
	})
	switch {
	case errors.Is(err, services.ErrMalformedInbound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing sender",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	// Acknowledge webhook receipt
	return c.Status(fiber.StatusOK).SendString("OK")
}

// VerifyWebhook answers the provider's subscription handshake
func (h *WhatsAppHandler) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "" && token == h.verifyToken {
		log.Println("✅ Webhook verified successfully")
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	log.Println("❌ Webhook verification failed")
	return c.SendStatus(fiber.StatusForbidden)
}

// TestWebhookPayload is the development stand-in for a Twilio message
type TestWebhookPayload struct {
	From        string `json:"from"`
	Message     string `json:"message"`
	ProfileName string `json:"profile_name"`
}

// HandleTestWebhook runs a message through the chat flow and returns the reply
// instead of sending it (development only)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload

	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	log.Printf("🧪 Test webhook received from %s: %s", payload.From, payload.Message)

	response, err := h.whatsappService.Reply(c.UserContext(), services.InboundMessage{
		From:        payload.From,
		Body:        payload.Message,
		ProfileName: payload.ProfileName,
	})
	if errors.Is(err, services.ErrMalformedInbound) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "from is required",
		})
	}
	if err != nil {
		log.Printf("Error processing test message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to process message",
		})
	}

	log.Printf("📤 Test response generated: %s", response)
	return c.JSON(fiber.Map{
		"success":  true,
		"response": response,
	})
}
