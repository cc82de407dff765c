// greet sends the Zoss Water welcome message to one or more WhatsApp numbers.
//
//	greet --to +15551234567 --to +15557654321
//	greet --file recipients.yaml --interval 2s
//
// The recipients file holds a single list:
//
//	recipients:
//	  - "+15551234567"
//	  - "+15557654321"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/zosswater/whatsapp-bot/internal/config"
	"github.com/zosswater/whatsapp-bot/internal/services"
	"github.com/zosswater/whatsapp-bot/internal/sessions"
)

func main() {
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, twilioSender); err != nil {
		fmt.Fprintf(os.Stderr, "greet: %v\n", err)
		os.Exit(1)
	}
}

// errSomeFailed reports a batch in which at least one greeting was not sent
var errSomeFailed = errors.New("some greetings failed")

type recipientsFile struct {
	Recipients []string `yaml:"recipients"`
}

func twilioSender(cfg *config.Config) (services.MessageSender, error) {
	if !cfg.TwilioConfigured() {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_FROM must be set")
	}
	twilioService, err := services.NewTwilioService(cfg.Twilio)
	if err != nil {
		return nil, err
	}
	return twilioService, nil
}

func run(ctx context.Context, args []string, stdout io.Writer, newSender func(*config.Config) (services.MessageSender, error)) error {
	cfg := config.Load()

	var to []string
	var filePath string
	var interval time.Duration

	flagSet := pflag.NewFlagSet("greet", pflag.ContinueOnError)
	flagSet.SetOutput(stdout)
	flagSet.StringArrayVar(&to, "to", nil, "recipient phone number (repeatable)")
	flagSet.StringVar(&filePath, "file", "", "YAML file with a recipients list")
	flagSet.DurationVar(&interval, "interval", cfg.GreetingInterval, "pause between messages")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}

	recipients := append([]string(nil), to...)
	if filePath != "" {
		fromFile, err := loadRecipients(filePath)
		if err != nil {
			return err
		}
		recipients = append(recipients, fromFile...)
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients: use --to or --file")
	}

	sender, err := newSender(cfg)
	if err != nil {
		return err
	}

	// Outreach only: the chat flow is never entered, so it stays unset
	greeter := services.NewWhatsAppService(nil, sessions.NewMemoryStore(), sender, interval)

	failed := 0
	for _, result := range greeter.SendGreetingBulk(ctx, recipients) {
		if result.Success {
			fmt.Fprintf(stdout, "✅ %s %s\n", result.PhoneNumber, result.MessageSID)
			continue
		}
		failed++
		fmt.Fprintf(stdout, "❌ %s %s\n", result.PhoneNumber, result.Error)
	}

	fmt.Fprintf(stdout, "%d sent, %d failed\n", len(recipients)-failed, failed)
	if failed > 0 {
		return errSomeFailed
	}
	return nil
}

func loadRecipients(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipients: %w", err)
	}

	var file recipientsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	recipients := make([]string, 0, len(file.Recipients))
	for _, r := range file.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients, nil
}
