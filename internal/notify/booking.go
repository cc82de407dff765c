package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"

	"github.com/zosswater/whatsapp-bot/internal/events"
	"github.com/zosswater/whatsapp-bot/internal/storage"
)

// BookingNotifier emails customers a copy of their booked service ticket
type BookingNotifier struct {
	customers storage.CustomerRepository
	mailer    Mailer
}

func NewBookingNotifier(customers storage.CustomerRepository, mailer Mailer) *BookingNotifier {
	return &BookingNotifier{customers: customers, mailer: mailer}
}

// Register subscribes the notifier to ticket bookings on the bus
func (n *BookingNotifier) Register(bus events.Bus) error {
	return bus.Subscribe(events.TicketBooked, func(msg *events.Message) {
		if err := n.HandleTicketBooked(context.Background(), msg.Data); err != nil {
			log.Printf("❌ Booking confirmation email failed: %v", err)
		}
	})
}

// HandleTicketBooked sends the confirmation for one ticket.booked payload
func (n *BookingNotifier) HandleTicketBooked(ctx context.Context, payload []byte) error {
	var evt events.TicketBookedEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("decode ticket event: %w", err)
	}

	customer, err := n.customers.FindCustomerByPhone(ctx, evt.Phone)
	if err != nil {
		return fmt.Errorf("lookup customer %s: %w", evt.Phone, err)
	}
	if customer == nil || customer.Email == "" {
		// Nothing to send to; the WhatsApp confirmation is enough
		return nil
	}

	subject := fmt.Sprintf("Zoss Water service booked - %s", evt.TicketID)
	text := fmt.Sprintf("Hi %s,\n\nYour service request has been booked.\n\n"+
		"Issue: %s\nModel: %s\nAddress: %s\nDate: %s\nTime: %s\nTicket ID: %s\n\n"+
		"Our team will contact you shortly to confirm the appointment.\n\nThank you for choosing Zoss Water!",
		customer.Name, evt.Issue, evt.Model, evt.Address, evt.PreferredDate, evt.PreferredTime, evt.TicketID)
	body := fmt.Sprintf(`
		<h2>Your service request is booked</h2>
		<p>Hi %s,</p>
		<ul>
			<li>Issue: %s</li>
			<li>Model: %s</li>
			<li>Address: %s</li>
			<li>Date: %s</li>
			<li>Time: %s</li>
			<li>Ticket ID: <strong>%s</strong></li>
		</ul>
		<p>Our team will contact you shortly to confirm the appointment.</p>
	`, html.EscapeString(customer.Name), html.EscapeString(evt.Issue), html.EscapeString(evt.Model),
		html.EscapeString(evt.Address), html.EscapeString(evt.PreferredDate),
		html.EscapeString(evt.PreferredTime), html.EscapeString(evt.TicketID))

	if err := n.mailer.Send(ctx, customer.Email, customer.Name, subject, text, body); err != nil {
		return fmt.Errorf("send confirmation for %s: %w", evt.TicketID, err)
	}
	log.Printf("📧 Booking confirmation emailed for %s", evt.TicketID)
	return nil
}
