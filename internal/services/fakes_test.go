package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zosswater/whatsapp-bot/internal/models"
	"github.com/zosswater/whatsapp-bot/internal/sessions"
	"github.com/zosswater/whatsapp-bot/internal/storage"
)

var errBackend = errors.New("backend unavailable")

// flakyStore wraps the memory repositories and fails selected operations
type flakyStore struct {
	*storage.MemoryStore
	failPhoneLookup bool
	failEmailLookup bool
	createCustomer  error
	createTicket    error
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: storage.NewMemoryStore()}
}

func (s *flakyStore) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	if s.failPhoneLookup {
		return nil, errBackend
	}
	return s.MemoryStore.FindCustomerByPhone(ctx, phone)
}

func (s *flakyStore) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if s.failEmailLookup {
		return nil, errBackend
	}
	return s.MemoryStore.FindCustomerByEmail(ctx, email)
}

func (s *flakyStore) CreateCustomer(ctx context.Context, reg *models.CustomerRegistration) (*models.Customer, error) {
	if s.createCustomer != nil {
		return nil, s.createCustomer
	}
	return s.MemoryStore.CreateCustomer(ctx, reg)
}

func (s *flakyStore) CreateTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	if s.createTicket != nil {
		return nil, s.createTicket
	}
	return s.MemoryStore.CreateTicket(ctx, ticket)
}

// brokenSessions fails every read
type brokenSessions struct {
	*sessions.MemoryStore
}

func (b *brokenSessions) Get(ctx context.Context, key string) (*models.Session, error) {
	return nil, errBackend
}

type published struct {
	subject string
	data    interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject: subject, data: data})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}

type sentMessage struct {
	to   string
	body string
}

// recordingSender records sends; failFor makes sends to listed numbers fail
type recordingSender struct {
	mu       sync.Mutex
	sent     []sentMessage
	failFor  map[string]bool
	failBody map[string]bool
	count    int
}

func (s *recordingSender) Send(ctx context.Context, to, body string) (*SendReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[to] || s.failBody[body] {
		return nil, fmt.Errorf("send to %s: %w", to, errBackend)
	}
	s.count++
	s.sent = append(s.sent, sentMessage{to: to, body: body})
	return &SendReceipt{SID: fmt.Sprintf("SM%03d", s.count)}, nil
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

// sweptSessions drops the stored session right after the first read, the way a
// sweep landing between a step's read and its write would
type sweptSessions struct {
	*sessions.MemoryStore
	swept bool
}

func (s *sweptSessions) Get(ctx context.Context, key string) (*models.Session, error) {
	session, err := s.MemoryStore.Get(ctx, key)
	if err == nil && session != nil && !s.swept {
		s.swept = true
		_ = s.MemoryStore.Clear(ctx, key)
	}
	return session, err
}

// stuckSessions fails the first clearFailures calls to Clear
type stuckSessions struct {
	*sessions.MemoryStore
	clearFailures int
	clearCalls    int
}

func (s *stuckSessions) Clear(ctx context.Context, key string) error {
	s.clearCalls++
	if s.clearCalls <= s.clearFailures {
		return errBackend
	}
	return s.MemoryStore.Clear(ctx, key)
}
