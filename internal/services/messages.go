package services

import (
	"fmt"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

// Replies sent by the chat flow. Each step has a reprompt for blank input and
// one for input that fails validation.
const (
	MsgWelcomeNewCustomer = "💧 Welcome to Zoss Water! How can we help you today?\n\n" +
		"I see you're a new customer. Let me help you register first so we can provide you with the best service.\n\n" +
		"Please provide your full name:"
	MsgTemporaryIssue = "Welcome to Zoss Water! We're experiencing a temporary issue. Please try again in a moment."
	MsgGreeting       = "💧 Welcome to Zoss Water! How can we help you today?"
	MsgApology        = "❌ Sorry, something went wrong while processing your message. Please try again in a moment."

	MsgEmptyName    = "Please provide your full name to continue:"
	MsgEmptyEmail   = "Please provide your email address:"
	MsgEmptyIssue   = "Please describe the issue you're facing:"
	MsgEmptyModel   = "Please mention your purifier model:"
	MsgEmptyAddress = "Please provide your address:"
	MsgEmptyDate    = "Please provide your preferred date:"
	MsgEmptyTime    = "Please provide your preferred time:"

	MsgInvalidName    = "Please provide a valid full name (at least 2 characters):"
	MsgInvalidEmail   = "Please provide a valid email address (e.g., john@example.com):"
	MsgInvalidIssue   = "Please provide a detailed description of the issue (at least 3 characters):"
	MsgInvalidModel   = "Please provide the model of your Zoss Water purifier:"
	MsgInvalidAddress = "Please provide a complete address with area details (at least 10 characters):"
	MsgInvalidDate    = "Please provide a valid date in DD/MM/YYYY format (e.g., 25/12/2024):"
	MsgInvalidTime    = "Please provide a preferred time (e.g., 10:00 AM, 2:00 PM, Morning, Evening):"

	MsgEmailTaken          = "This email is already registered. Please provide a different email address:"
	MsgRegistrationFailed  = "Sorry, there was an error during registration. Please try again or contact our support team."
	MsgBookingFailed       = "Sorry, there was an error creating your service request. Please try again or contact our support team directly."
	MsgAskModel            = "Thank you for describing the issue. 📝\n\nNow, please mention the model of your Zoss Water purifier:"
	MsgAskAddress          = "Perfect! 👍\n\nWhat's your full address for the service visit?"
	MsgAskDate             = "Great! 📍\n\nWhat's your preferred date for the service visit?\n\nPlease provide in DD/MM/YYYY format (e.g., 25/12/2024):"
	MsgAskTime             = "Perfect! 📅\n\nWhat's your preferred time for the technician visit?\n\nPlease specify (e.g., 10:00 AM, 2:00 PM, Morning, Afternoon, Evening):"
	msgSessionWriteFailure = "Sorry, we couldn't save your answer. Please send it again in a moment."
)

func msgWelcomeBack(name string) string {
	return fmt.Sprintf("Hello %s! 👋\n\nWelcome back to Zoss Water! How can we help you today?\n\n"+
		"Please describe the issue you're facing with your Zoss Water purifier.", name)
}

func msgAskEmail(name string) string {
	return fmt.Sprintf("Thank you, %s! 😊\n\nNow please provide your email address:", name)
}

func msgRegistered(name string) string {
	return fmt.Sprintf("✅ Registration successful! Welcome to Zoss Water, %s! 🎉\n\n"+
		"Now I can help you with your service request.\n\n"+
		"Please describe the issue you're facing with your Zoss Water purifier:", name)
}

func msgBooked(td *models.TicketData, ticketID string) string {
	return fmt.Sprintf("✅ Your service request has been successfully booked! 🎉\n\n"+
		"Our team will contact you shortly to confirm the appointment.\n\n"+
		"📋 *Booking Details:*\n"+
		"• Issue: %s\n• Model: %s\n• Address: %s\n• Date: %s\n• Time: %s\n• Ticket ID: %s\n\n"+
		"Thank you for choosing Zoss Water! 💧",
		td.Issue, td.Model, td.Address, td.PreferredDate, td.PreferredTime, ticketID)
}
