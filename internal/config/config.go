package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Twilio   TwilioConfig
	Webhook  WebhookConfig
	Session  SessionConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Email    EmailConfig

	AdminAPIKey      string
	GreetingInterval time.Duration
}

type ServerConfig struct {
	Port        string
	Environment string // development or production
}

type DatabaseConfig struct {
	UseMemoryStore         bool
	User                   string
	Password               string
	Name                   string
	Host                   string
	Port                   int
	InstanceConnectionName string // Cloud SQL socket, production only
}

type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string // Format: "whatsapp:+14155238886"
}

type WebhookConfig struct {
	VerifyToken       string
	DisableValidation bool
	PublicBaseURL     string // used to rebuild the signed URL behind proxies
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type RedisConfig struct {
	URL string // empty keeps sessions in process memory
}

type NATSConfig struct {
	URL string // empty publishes events in process
}

type EmailConfig struct {
	MailerSendKey string
	FromName      string
	FromEmail     string
}

// LoadDotEnv reads .env files for local development. Missing files are not an error.
func LoadDotEnv() {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}
}

// Load builds the configuration from the environment
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "production"),
		},
		Database: DatabaseConfig{
			UseMemoryStore:         getBool("USE_MEMORY_STORE", false),
			User:                   getEnv("DB_USER", "postgres"),
			Password:               getEnv("DB_PASS", ""),
			Name:                   getEnv("DB_NAME", "zosswater"),
			Host:                   getEnv("DB_HOST", "localhost"),
			Port:                   getInt("DB_PORT", 5432),
			InstanceConnectionName: getEnv("INSTANCE_CONNECTION_NAME", ""),
		},
		Twilio: TwilioConfig{
			AccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
			WhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),
		},
		Webhook: WebhookConfig{
			VerifyToken:       getEnv("WEBHOOK_VERIFY_TOKEN", "zoss-water-token"),
			DisableValidation: getBool("DISABLE_WEBHOOK_VALIDATION", false),
			PublicBaseURL:     getEnv("PUBLIC_BASE_URL", ""),
		},
		Session: SessionConfig{
			TTL:           getDuration("SESSION_TTL", time.Hour),
			SweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Email: EmailConfig{
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromName:      getEnv("MAIL_FROM_NAME", "Zoss Water"),
			FromEmail:     getEnv("MAIL_FROM_EMAIL", ""),
		},
		AdminAPIKey:      getEnv("ADMIN_API_KEY", ""),
		GreetingInterval: getDuration("GREETING_INTERVAL", time.Second),
	}
}

// IsDevelopment reports whether development-only routes and relaxed validation apply
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// TwilioConfigured reports whether outbound WhatsApp sending is possible
func (c *Config) TwilioConfigured() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.WhatsAppFrom != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
