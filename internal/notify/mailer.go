package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// Mailer sends a single transactional email
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, text, html string) error
}

type MailerSendMailer struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(apiKey, fromName, fromEmail string) (*MailerSendMailer, error) {
	if apiKey == "" || fromEmail == "" {
		return nil, fmt.Errorf("MailerSend not configured")
	}

	return &MailerSendMailer{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}, nil
}

func (m *MailerSendMailer) Send(ctx context.Context, toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}

// LogMailer prints emails instead of sending them (development)
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, toEmail, toName, subject, text, html string) error {
	log.Printf("📧 [dev mail] to=%s subject=%q\n%s", toEmail, subject, text)
	return nil
}
