package services

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/zosswater/whatsapp-bot/internal/config"
	"github.com/zosswater/whatsapp-bot/internal/utils"
)

// SendReceipt identifies an accepted outbound message
type SendReceipt struct {
	SID string `json:"sid"`
}

// MessageSender delivers a text to a recipient. to is a bare phone number;
// transport-specific addressing is the sender's concern.
type MessageSender interface {
	Send(ctx context.Context, to, body string) (*SendReceipt, error)
}

type TwilioService struct {
	client *twilio.RestClient
	from   string // Your Twilio WhatsApp number
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.TwilioConfig) (*TwilioService, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppFrom == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioService{
		client: client,
		from:   utils.WhatsAppAddress(cfg.WhatsAppFrom),
	}, nil
}

// Send sends a WhatsApp message via Twilio
func (t *TwilioService) Send(ctx context.Context, to, body string) (*SendReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(utils.WhatsAppAddress(to))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp message to %s: %v", to, err)
		return nil, fmt.Errorf("twilio send: %w", err)
	}

	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return nil, fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	receipt := &SendReceipt{}
	if resp.Sid != nil {
		receipt.SID = *resp.Sid
	}
	log.Printf("✅ WhatsApp message sent to %s! SID: %s", to, receipt.SID)
	return receipt, nil
}

// LogSender stands in for Twilio when credentials are missing: replies are logged, not sent
type LogSender struct {
	counter atomic.Int64
}

func (l *LogSender) Send(ctx context.Context, to, body string) (*SendReceipt, error) {
	n := l.counter.Add(1)
	log.Printf("📤 Response (not sent - Twilio not configured) to %s: %s", to, body)
	return &SendReceipt{SID: fmt.Sprintf("LOCAL%06d", n)}, nil
}
