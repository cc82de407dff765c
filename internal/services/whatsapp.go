package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/zosswater/whatsapp-bot/internal/sessions"
	"github.com/zosswater/whatsapp-bot/internal/utils"
)

var (
	// ErrMalformedInbound is returned for inbound messages without a usable sender
	ErrMalformedInbound = errors.New("malformed inbound message: missing sender")
	// ErrInvalidRecipient is returned when an outreach recipient is blank
	ErrInvalidRecipient = errors.New("recipient phone number is required")
)

// InboundMessage is the transport-neutral view of a webhook payload
type InboundMessage struct {
	From        string // sender address, may carry the whatsapp: prefix
	Body        string
	ProfileName string // display name hint, never used for identity
}

// GreetingResult is the outcome of one recipient in a bulk greeting
type GreetingResult struct {
	PhoneNumber string `json:"phoneNumber"`
	Success     bool   `json:"success"`
	MessageSID  string `json:"messageSid,omitempty"`
	Error       string `json:"error,omitempty"`
}

// WhatsAppService bridges the messaging transport and the chat flow
type WhatsAppService struct {
	flow             *ChatFlowService
	sessions         sessions.Store
	sender           MessageSender
	greetingInterval time.Duration
}

// NewWhatsAppService creates the dispatcher. greetingInterval paces bulk greetings.
func NewWhatsAppService(flow *ChatFlowService, sessionStore sessions.Store, sender MessageSender, greetingInterval time.Duration) *WhatsAppService {
	return &WhatsAppService{
		flow:             flow,
		sessions:         sessionStore,
		sender:           sender,
		greetingInterval: greetingInterval,
	}
}

// HandleInbound answers one inbound message. On failure the sender gets a
// best-effort apology and the error is returned for the webhook response.
func (w *WhatsAppService) HandleInbound(ctx context.Context, msg InboundMessage) error {
	phone := utils.StripWhatsAppPrefix(msg.From)
	if phone == "" {
		return ErrMalformedInbound
	}

	log.Printf("📱 Received message from %s: %s", phone, msg.Body)

	err := w.withSender(phone, func() error {
		reply, err := w.reply(ctx, phone, msg)
		if err != nil {
			return err
		}
		if reply == "" {
			return nil
		}
		if _, err := w.sender.Send(ctx, phone, reply); err != nil {
			return fmt.Errorf("send reply to %s: %w", phone, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ Error handling message from %s: %v", phone, err)
		if _, sendErr := w.sender.Send(ctx, phone, MsgApology); sendErr != nil {
			log.Printf("❌ Failed to send apology to %s: %v", phone, sendErr)
		}
		return err
	}
	return nil
}

// Reply computes the reply for msg without sending it (development webhook)
func (w *WhatsAppService) Reply(ctx context.Context, msg InboundMessage) (string, error) {
	phone := utils.StripWhatsAppPrefix(msg.From)
	if phone == "" {
		return "", ErrMalformedInbound
	}

	var reply string
	err := w.withSender(phone, func() error {
		var err error
		reply, err = w.reply(ctx, phone, msg)
		return err
	})
	return reply, err
}

// withSender runs fn while holding the sender's session lock, turning panics into errors
func (w *WhatsAppService) withSender(phone string, fn func() error) (err error) {
	unlock := w.sessions.Lock(phone)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing message from %s: %v", phone, r)
		}
	}()
	return fn()
}

func (w *WhatsAppService) reply(ctx context.Context, phone string, msg InboundMessage) (string, error) {
	session, err := w.sessions.Get(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("load session for %s: %w", phone, err)
	}

	if !session.Started() {
		return w.flow.BeginFlow(ctx, phone, msg.ProfileName), nil
	}
	return w.flow.ProcessUserResponse(ctx, phone, msg.Body), nil
}

// SendGreeting proactively greets one recipient
func (w *WhatsAppService) SendGreeting(ctx context.Context, phone string) (*SendReceipt, error) {
	phone = utils.StripWhatsAppPrefix(phone)
	if phone == "" {
		return nil, ErrInvalidRecipient
	}
	return w.sender.Send(ctx, phone, MsgGreeting)
}

// SendGreetingBulk greets recipients one at a time, paced to respect outbound
// rate limits. A failed recipient never stops the batch; if ctx ends, the
// remaining recipients are reported as failed.
func (w *WhatsAppService) SendGreetingBulk(ctx context.Context, phones []string) []GreetingResult {
	limit := rate.Inf
	if w.greetingInterval > 0 {
		limit = rate.Every(w.greetingInterval)
	}
	limiter := rate.NewLimiter(limit, 1)

	results := make([]GreetingResult, 0, len(phones))
	for _, phone := range phones {
		result := GreetingResult{PhoneNumber: phone}

		if err := limiter.Wait(ctx); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		receipt, err := w.SendGreeting(ctx, phone)
		if err != nil {
			log.Printf("❌ Greeting to %s failed: %v", phone, err)
			result.Error = err.Error()
		} else {
			result.Success = true
			result.MessageSID = receipt.SID
		}
		results = append(results, result)
	}
	return results
}
