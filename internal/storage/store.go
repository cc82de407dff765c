package storage

import (
	"context"
	"errors"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

var (
	// ErrNotFound is returned by lookups that address a single record by key
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field (phone, email, ticket id) already exists
	ErrDuplicate = errors.New("duplicate record")
)

// CustomerRepository persists customers. Find methods return (nil, nil) when nothing matches.
type CustomerRepository interface {
	FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, reg *models.CustomerRegistration) (*models.Customer, error)
}

// TicketRepository persists service tickets
type TicketRepository interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error)
	GetTicketsByCustomer(ctx context.Context, customerID string) ([]*models.Ticket, error)
}

// Store defines the interface for storage operations
type Store interface {
	CustomerRepository
	TicketRepository

	// Ping reports whether the backing storage is reachable
	Ping(ctx context.Context) error
}
