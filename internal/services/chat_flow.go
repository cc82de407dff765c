package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/zosswater/whatsapp-bot/internal/events"
	"github.com/zosswater/whatsapp-bot/internal/models"
	"github.com/zosswater/whatsapp-bot/internal/sessions"
	"github.com/zosswater/whatsapp-bot/internal/storage"
)

// ChatFlowService is the conversation engine: it turns one inbound message into
// one reply, moving the sender through the registration and booking steps.
//
// It does not serialize requests itself. Callers hold sessions.Store.Lock for
// the sender around BeginFlow and ProcessUserResponse.
type ChatFlowService struct {
	sessions    sessions.Store
	customers   storage.CustomerRepository
	tickets     storage.TicketRepository
	publisher   events.Publisher
	transitions map[models.Step]transition
	now         func() time.Time
}

// NewChatFlowService wires the engine. publisher may be nil.
func NewChatFlowService(
	sessionStore sessions.Store,
	customers storage.CustomerRepository,
	tickets storage.TicketRepository,
	publisher events.Publisher,
) *ChatFlowService {
	f := &ChatFlowService{
		sessions:  sessionStore,
		customers: customers,
		tickets:   tickets,
		publisher: publisher,
		now:       time.Now,
	}
	f.transitions = f.newTransitions()
	return f
}

// BeginFlow starts a conversation for a sender with no usable session.
// profileName is the transport's display name, kept only as a registration memo.
func (f *ChatFlowService) BeginFlow(ctx context.Context, phone, profileName string) string {
	log.Printf("🔍 Checking customer status for %s", phone)

	customer, err := f.customers.FindCustomerByPhone(ctx, phone)
	if err != nil {
		log.Printf("❌ Error checking customer %s: %v", phone, err)
		return MsgTemporaryIssue
	}

	if customer != nil {
		// Existing customer - start service flow
		err = f.sessions.Set(ctx, phone, &models.Session{
			Step:         models.StepAskIssue,
			CustomerID:   customer.CustomerID,
			CustomerName: customer.Name,
		})
		if err != nil {
			log.Printf("❌ Failed to start session for %s: %v", phone, err)
			return MsgTemporaryIssue
		}
		return msgWelcomeBack(customer.Name)
	}

	// New customer - start registration
	err = f.sessions.Set(ctx, phone, &models.Session{
		Step:             models.StepAskName,
		RegistrationData: &models.RegistrationData{ProfileName: strings.TrimSpace(profileName)},
	})
	if err != nil {
		log.Printf("❌ Failed to start session for %s: %v", phone, err)
		return MsgTemporaryIssue
	}
	return MsgWelcomeNewCustomer
}

// ProcessUserResponse feeds message to the sender's current step
func (f *ChatFlowService) ProcessUserResponse(ctx context.Context, phone, message string) string {
	session, err := f.sessions.Get(ctx, phone)
	if err != nil {
		log.Printf("❌ Failed to load session for %s: %v", phone, err)
		return MsgTemporaryIssue
	}

	if !session.Started() {
		return f.BeginFlow(ctx, phone, "")
	}

	tr, ok := f.transitions[session.Step]
	if !ok {
		log.Printf("⚠️  Unknown step %q for %s, restarting flow", session.Step, phone)
		if err := f.sessions.Clear(ctx, phone); err != nil {
			log.Printf("❌ Failed to clear session for %s: %v", phone, err)
		}
		return f.BeginFlow(ctx, phone, "")
	}

	if strings.TrimSpace(message) == "" {
		return tr.Empty
	}

	value, ok := tr.Validate(message)
	if !ok {
		return tr.Invalid
	}

	return tr.Apply(ctx, phone, session, value, tr.Next)
}

func (f *ChatFlowService) applyName(ctx context.Context, phone string, s *models.Session, name string, next models.Step) string {
	reg := models.RegistrationData{}
	if s.RegistrationData != nil {
		reg = *s.RegistrationData
	}
	reg.Name = name

	return f.advance(ctx, phone, models.SessionPatch{Step: &next, RegistrationData: &reg}, msgAskEmail(name))
}

// advance stores one answer and returns reply. A session that vanished since
// it was read (swept or cleared) restarts the flow instead.
func (f *ChatFlowService) advance(ctx context.Context, phone string, patch models.SessionPatch, reply string) string {
	err := f.sessions.Update(ctx, phone, patch)
	switch {
	case errors.Is(err, sessions.ErrNotFound):
		log.Printf("⚠️  Session for %s disappeared mid-step, restarting flow", phone)
		return f.BeginFlow(ctx, phone, "")
	case err != nil:
		log.Printf("❌ Failed to save answer for %s: %v", phone, err)
		return msgSessionWriteFailure
	}
	return reply
}

func (f *ChatFlowService) applyEmail(ctx context.Context, phone string, s *models.Session, email string, next models.Step) string {
	reg := models.RegistrationData{}
	if s.RegistrationData != nil {
		reg = *s.RegistrationData
	}

	existing, err := f.customers.FindCustomerByEmail(ctx, email)
	if err != nil {
		log.Printf("❌ Registration error for %s: %v", phone, err)
		return MsgRegistrationFailed
	}

	var customer *models.Customer
	switch {
	case existing != nil && existing.Phone == phone:
		// Registered on an earlier attempt whose session write was lost
		customer = existing
	case existing != nil:
		return MsgEmailTaken
	default:
		customer, err = f.customers.CreateCustomer(ctx, &models.CustomerRegistration{
			Name:    reg.Name,
			Email:   email,
			Phone:   phone,
			Address: "",
		})
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				log.Printf("⚠️  Duplicate customer for %s (%s)", phone, email)
			} else {
				log.Printf("❌ Registration error for %s: %v", phone, err)
			}
			return MsgRegistrationFailed
		}
		log.Printf("✅ New customer registered: %s (%s)", customer.Name, customer.Email)
		f.publish(ctx, events.CustomerRegistered, events.CustomerRegisteredEvent{
			CustomerID:   customer.CustomerID,
			Name:         customer.Name,
			Email:        customer.Email,
			Phone:        customer.Phone,
			ProfileName:  reg.ProfileName,
			RegisteredAt: f.now(),
		})
	}

	// Registration data is discarded; the booking flow starts fresh
	err = f.sessions.Set(ctx, phone, &models.Session{
		Step:         next,
		CustomerID:   customer.CustomerID,
		CustomerName: customer.Name,
	})
	if err != nil {
		log.Printf("❌ Failed to move %s to booking: %v", phone, err)
		return msgSessionWriteFailure
	}
	return msgRegistered(customer.Name)
}

// collectTicketField stores one booking answer and moves to the next step
func (f *ChatFlowService) collectTicketField(reply string, set func(*models.TicketData, string)) func(context.Context, string, *models.Session, string, models.Step) string {
	return func(ctx context.Context, phone string, s *models.Session, value string, next models.Step) string {
		td := models.TicketData{}
		if s.TicketData != nil {
			td = *s.TicketData
		}
		set(&td, value)

		return f.advance(ctx, phone, models.SessionPatch{Step: &next, TicketData: &td}, reply)
	}
}

// applyTime is terminal: next is unused because a booked flow ends the session
func (f *ChatFlowService) applyTime(ctx context.Context, phone string, s *models.Session, preferredTime string, _ models.Step) string {
	td := models.TicketData{}
	if s.TicketData != nil {
		td = *s.TicketData
	}
	td.PreferredTime = preferredTime

	if s.CustomerID == "" || td.Issue == "" || td.Model == "" || td.Address == "" || td.PreferredDate == "" {
		log.Printf("⚠️  Incomplete booking session for %s, restarting flow", phone)
		if err := f.sessions.Clear(ctx, phone); err != nil {
			log.Printf("❌ Failed to clear session for %s: %v", phone, err)
		}
		return f.BeginFlow(ctx, phone, "")
	}

	ticket, err := f.tickets.CreateTicket(ctx, &models.Ticket{
		CustomerID:    s.CustomerID,
		Issue:         td.Issue,
		PurifierModel: td.Model,
		Address:       td.Address,
		PreferredDate: td.PreferredDate,
		PreferredTime: td.PreferredTime,
		Status:        models.TicketStatusBooked,
	})
	if err != nil {
		log.Printf("❌ Ticket creation error for %s: %v", phone, err)
		return MsgBookingFailed
	}
	log.Printf("✅ Service ticket created: %s", ticket.TicketID)

	// Booking is complete
	f.endBooking(ctx, phone, s, ticket.TicketID)

	f.publish(ctx, events.TicketBooked, events.TicketBookedEvent{
		TicketID:      ticket.TicketID,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		Phone:         phone,
		Issue:         td.Issue,
		Model:         td.Model,
		Address:       td.Address,
		PreferredDate: td.PreferredDate,
		PreferredTime: td.PreferredTime,
		BookedAt:      f.now(),
	})

	return msgBooked(&td, ticket.TicketID)
}

// endBooking drops the booking session. A session still at ask_time would book
// the same visit again, so when it cannot be cleared its ticket data is replaced.
func (f *ChatFlowService) endBooking(ctx context.Context, phone string, s *models.Session, ticketID string) {
	err := f.sessions.Clear(ctx, phone)
	if err != nil {
		log.Printf("⚠️  Failed to clear session for %s after %s, retrying: %v", phone, ticketID, err)
		err = f.sessions.Clear(ctx, phone)
	}
	if err == nil {
		return
	}

	log.Printf("❌ Failed to clear session for %s after %s: %v", phone, ticketID, err)
	err = f.sessions.Set(ctx, phone, &models.Session{
		Step:         models.StepAskIssue,
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
	})
	if err != nil {
		log.Printf("❌ Failed to reset session for %s after %s: %v", phone, ticketID, err)
	}
}

func (f *ChatFlowService) publish(ctx context.Context, subject string, data interface{}) {
	if f.publisher == nil {
		return
	}
	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		log.Printf("⚠️  Failed to publish %s: %v", subject, err)
	}
}
