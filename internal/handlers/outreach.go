package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zosswater/whatsapp-bot/internal/models"
	"github.com/zosswater/whatsapp-bot/internal/services"
	"github.com/zosswater/whatsapp-bot/internal/storage"
)

// OutreachHandler serves the admin API: proactive greetings and ticket lookup
type OutreachHandler struct {
	whatsappService *services.WhatsAppService
	tickets         storage.TicketRepository
}

func NewOutreachHandler(whatsappService *services.WhatsAppService, tickets storage.TicketRepository) *OutreachHandler {
	return &OutreachHandler{
		whatsappService: whatsappService,
		tickets:         tickets,
	}
}

type sendWelcomeRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type sendBulkWelcomeRequest struct {
	PhoneNumbers []string `json:"phoneNumbers"`
}

// SendWelcome greets a single number
func (h *OutreachHandler) SendWelcome(c *fiber.Ctx) error {
	var req sendWelcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number is required",
		})
	}

	receipt, err := h.whatsappService.SendGreeting(c.UserContext(), req.PhoneNumber)
	if err != nil {
		log.Printf("❌ Error sending welcome message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send welcome message",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"messageSid": receipt.SID,
	})
}

// SendBulkWelcome greets many numbers, reporting each outcome
func (h *OutreachHandler) SendBulkWelcome(c *fiber.Ctx) error {
	var req sendBulkWelcomeRequest
	if err := c.BodyParser(&req); err != nil || req.PhoneNumbers == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone numbers array is required",
		})
	}

	results := h.whatsappService.SendGreetingBulk(c.UserContext(), req.PhoneNumbers)
	return c.JSON(fiber.Map{
		"success": true,
		"results": results,
	})
}

// GetTicket looks up a service ticket by its reference
func (h *OutreachHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("ref"))
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Ticket not found",
		})
	}
	if err != nil {
		log.Printf("❌ Error loading ticket %s: %v", c.Params("ref"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load ticket",
		})
	}
	return c.JSON(ticket)
}

// ListCustomerTickets returns every ticket booked by a customer
func (h *OutreachHandler) ListCustomerTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.GetTicketsByCustomer(c.UserContext(), c.Params("id"))
	if err != nil {
		log.Printf("❌ Error listing tickets for %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load tickets",
		})
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return c.JSON(fiber.Map{
		"customerId": c.Params("id"),
		"tickets":    tickets,
	})
}
