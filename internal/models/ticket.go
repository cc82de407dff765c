package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zosswater/whatsapp-bot/internal/utils"
)

// Ticket is a service visit booked through the WhatsApp flow
type Ticket struct {
	gorm.Model
	TicketID      string `gorm:"uniqueIndex;not null" json:"ticket_id"`
	CustomerID    string `gorm:"index;not null" json:"customer_id"`
	Issue         string `gorm:"not null" json:"issue"`
	PurifierModel string `gorm:"column:model;not null" json:"model"`
	Address       string `gorm:"not null" json:"address"`
	PreferredDate string `gorm:"not null" json:"preferred_date"`
	PreferredTime string `gorm:"not null" json:"preferred_time"`
	Status        string `gorm:"default:'booked'" json:"status"` // booked, in-progress, completed, cancelled
}

// Ticket statuses. Only TicketStatusBooked is ever written by the chat flow.
const (
	TicketStatusBooked     = "booked"
	TicketStatusInProgress = "in-progress"
	TicketStatusCompleted  = "completed"
	TicketStatusCancelled  = "cancelled"
)

// ErrInvalidTicketStatus is returned when a ticket is created with an unknown status
var ErrInvalidTicketStatus = errors.New("invalid ticket status")

// ValidTicketStatus reports whether status is one of the known ticket statuses
func ValidTicketStatus(status string) bool {
	switch status {
	case TicketStatusBooked, TicketStatusInProgress, TicketStatusCompleted, TicketStatusCancelled:
		return true
	}
	return false
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	t.EnsureDefaults()
	return t.Validate()
}

// Validate rejects statuses outside the ticket lifecycle
func (t *Ticket) Validate() error {
	if !ValidTicketStatus(t.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidTicketStatus, t.Status)
	}
	return nil
}

// EnsureDefaults assigns the public reference and the initial status
func (t *Ticket) EnsureDefaults() {
	if t.TicketID == "" {
		t.TicketID = utils.NewTicketReference()
	}
	if t.Status == "" {
		t.Status = TicketStatusBooked
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
}
