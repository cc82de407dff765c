package events

import (
	"context"
	"time"
)

// Publisher emits domain events
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// Bus is a Publisher that can also deliver events to local handlers
type Bus interface {
	Publisher
	Subscribe(subject string, handler func(msg *Message)) error
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

// Event subjects
const (
	CustomerRegistered = "customer.registered"
	TicketBooked       = "ticket.booked"
)

// Event payloads
type CustomerRegisteredEvent struct {
	CustomerID   string    `json:"customer_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	ProfileName  string    `json:"profile_name,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type TicketBookedEvent struct {
	TicketID      string    `json:"ticket_id"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	Phone         string    `json:"phone"`
	Issue         string    `json:"issue"`
	Model         string    `json:"model"`
	Address       string    `json:"address"`
	PreferredDate string    `json:"preferred_date"`
	PreferredTime string    `json:"preferred_time"`
	BookedAt      time.Time `json:"booked_at"`
}
