package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

// MemoryStore holds all data in memory for local runs and tests
type MemoryStore struct {
	customers map[string]*models.Customer // by CustomerID
	byPhone   map[string]string
	byEmail   map[string]string
	tickets   map[string]*models.Ticket // by TicketID

	// Mutexes for thread safety
	customerMu sync.RWMutex
	ticketMu   sync.RWMutex

	// Counters for ID generation
	customerCounter uint
	ticketCounter   uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[string]*models.Customer),
		byPhone:   make(map[string]string),
		byEmail:   make(map[string]string),
		tickets:   make(map[string]*models.Ticket),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Customer operations
func (m *MemoryStore) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	id, ok := m.byPhone[phone]
	if !ok {
		return nil, nil
	}
	c := *m.customers[id]
	return &c, nil
}

func (m *MemoryStore) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	c := *m.customers[id]
	return &c, nil
}

func (m *MemoryStore) CreateCustomer(ctx context.Context, reg *models.CustomerRegistration) (*models.Customer, error) {
	customer := &models.Customer{
		Name:    reg.Name,
		Email:   reg.Email,
		Phone:   reg.Phone,
		Address: reg.Address,
	}

	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	customer.EnsureDefaults()
	if _, exists := m.byPhone[customer.Phone]; exists {
		return nil, ErrDuplicate
	}
	if _, exists := m.byEmail[customer.Email]; exists {
		return nil, ErrDuplicate
	}

	m.customerCounter++
	customer.ID = m.customerCounter
	customer.CustomerID = fmt.Sprintf("CUS%05d", m.customerCounter)

	m.customers[customer.CustomerID] = customer
	m.byPhone[customer.Phone] = customer.CustomerID
	m.byEmail[customer.Email] = customer.CustomerID

	c := *customer
	return &c, nil
}

// Ticket operations
func (m *MemoryStore) CreateTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	t := *ticket
	t.EnsureDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}

	m.ticketMu.Lock()
	defer m.ticketMu.Unlock()

	if _, exists := m.tickets[t.TicketID]; exists {
		return nil, ErrDuplicate
	}

	m.ticketCounter++
	t.ID = m.ticketCounter
	m.tickets[t.TicketID] = &t

	out := t
	return &out, nil
}

func (m *MemoryStore) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	m.ticketMu.RLock()
	defer m.ticketMu.RUnlock()

	t, exists := m.tickets[ticketID]
	if !exists {
		return nil, ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *MemoryStore) GetTicketsByCustomer(ctx context.Context, customerID string) ([]*models.Ticket, error) {
	m.ticketMu.RLock()
	defer m.ticketMu.RUnlock()

	var tickets []*models.Ticket
	for _, t := range m.tickets {
		if t.CustomerID == customerID {
			out := *t
			tickets = append(tickets, &out)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

// CustomerCount and TicketCount report how many records the store holds
func (m *MemoryStore) CustomerCount() int {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()
	return len(m.customers)
}

func (m *MemoryStore) TicketCount() int {
	m.ticketMu.RLock()
	defer m.ticketMu.RUnlock()
	return len(m.tickets)
}
