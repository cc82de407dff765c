package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zosswater/whatsapp-bot/internal/events"
	"github.com/zosswater/whatsapp-bot/internal/models"
	"github.com/zosswater/whatsapp-bot/internal/storage"
)

type recordingMailer struct {
	to      []string
	subject string
	text    string
	err     error
}

func (m *recordingMailer) Send(ctx context.Context, toEmail, toName, subject, text, html string) error {
	m.to = append(m.to, toEmail)
	m.subject = subject
	m.text = text
	return m.err
}

func bookedPayload(t *testing.T, phone string) []byte {
	t.Helper()
	data, err := json.Marshal(events.TicketBookedEvent{
		TicketID:      "ZW-ABCDEF12",
		Phone:         phone,
		Issue:         "Water tastes odd",
		Model:         "Z-300",
		Address:       "4 Privet Drive, Little Whinging",
		PreferredDate: "25/12/2024",
		PreferredTime: "10 AM",
	})
	require.NoError(t, err)
	return data
}

func TestBookingNotifier_SendsToCustomerEmail(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_, err := store.CreateCustomer(ctx, &models.CustomerRegistration{Name: "Jo", Email: "jo@x.com", Phone: "+1555"})
	require.NoError(t, err)

	mailer := &recordingMailer{}
	n := NewBookingNotifier(store, mailer)

	require.NoError(t, n.HandleTicketBooked(ctx, bookedPayload(t, "+1555")))
	assert.Equal(t, []string{"jo@x.com"}, mailer.to)
	assert.Contains(t, mailer.subject, "ZW-ABCDEF12")
	assert.Contains(t, mailer.text, "Z-300")
}

func TestBookingNotifier_UnknownCustomerIsSkipped(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewBookingNotifier(storage.NewMemoryStore(), mailer)

	require.NoError(t, n.HandleTicketBooked(context.Background(), bookedPayload(t, "+1999")))
	assert.Empty(t, mailer.to)
}

func TestBookingNotifier_Errors(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_, err := store.CreateCustomer(ctx, &models.CustomerRegistration{Name: "Jo", Email: "jo@x.com", Phone: "+1555"})
	require.NoError(t, err)

	n := NewBookingNotifier(store, &recordingMailer{err: errors.New("smtp down")})
	assert.Error(t, n.HandleTicketBooked(ctx, bookedPayload(t, "+1555")))
	assert.Error(t, n.HandleTicketBooked(ctx, []byte("{not json")))
}

func TestBookingNotifier_RegisterOnLocalBus(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_, err := store.CreateCustomer(ctx, &models.CustomerRegistration{Name: "Jo", Email: "jo@x.com", Phone: "+1555"})
	require.NoError(t, err)

	mailer := &recordingMailer{}
	bus := events.NewLocalBus()
	require.NoError(t, NewBookingNotifier(store, mailer).Register(bus))

	var evt events.TicketBookedEvent
	require.NoError(t, json.Unmarshal(bookedPayload(t, "+1555"), &evt))
	require.NoError(t, bus.Publish(ctx, events.TicketBooked, evt))
	require.NoError(t, bus.Close())

	assert.Equal(t, []string{"jo@x.com"}, mailer.to)
}
