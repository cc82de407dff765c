package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/zosswater/whatsapp-bot/database"
	"github.com/zosswater/whatsapp-bot/internal/config"
	"github.com/zosswater/whatsapp-bot/internal/events"
	"github.com/zosswater/whatsapp-bot/internal/handlers"
	"github.com/zosswater/whatsapp-bot/internal/jobs"
	"github.com/zosswater/whatsapp-bot/internal/notify"
	"github.com/zosswater/whatsapp-bot/internal/routes"
	"github.com/zosswater/whatsapp-bot/internal/services"
	"github.com/zosswater/whatsapp-bot/internal/sessions"
	"github.com/zosswater/whatsapp-bot/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	config.LoadDotEnv()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if cfg.Database.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		db, err := database.Connect(cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		// Run migrations
		log.Println("🔄 Running database migrations...")
		if err := database.Migrate(db); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(db)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Session store
	var sessionStore sessions.Store
	if cfg.Redis.URL != "" {
		redisStore, err := sessions.NewRedisStore(ctx, cfg.Redis.URL, sessions.WithTTL(cfg.Session.TTL))
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer redisStore.Close()
		sessionStore = redisStore
		log.Println("✅ Sessions stored in Redis")
	} else {
		sessionStore = sessions.NewMemoryStore()
		log.Println("⚠️  Sessions kept in process memory")
	}

	// Event bus
	var bus events.Bus
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			log.Fatal("Failed to connect to NATS:", err)
		}
		bus = natsBus
		log.Println("✅ Publishing events to NATS")
	} else {
		bus = events.NewLocalBus()
	}
	defer bus.Close()

	// Booking confirmation emails
	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.Email.MailerSendKey != "" {
		ms, err := notify.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
		if err != nil {
			log.Printf("⚠️  MailerSend not initialized: %v", err)
		} else {
			mailer = ms
		}
	}
	if err := notify.NewBookingNotifier(store, mailer).Register(bus); err != nil {
		log.Fatal("Failed to subscribe booking notifier:", err)
	}

	// Initialize Twilio service
	var sender services.MessageSender
	if cfg.TwilioConfigured() {
		twilioService, err := services.NewTwilioService(cfg.Twilio)
		if err != nil {
			log.Fatal("Failed to initialize Twilio service:", err)
		}
		sender = twilioService
		log.Println("✅ Twilio service initialized")
	} else {
		log.Println("⚠️  Twilio credentials not found - replies will only be logged")
		sender = &services.LogSender{}
	}

	chatFlow := services.NewChatFlowService(sessionStore, store, store, bus)
	whatsappService := services.NewWhatsAppService(chatFlow, sessionStore, sender, cfg.GreetingInterval)

	// Expired session cleanup
	sweepJob := jobs.NewSessionSweepJob(sessionStore, cfg.Session.SweepInterval, cfg.Session.TTL)
	sweepJob.Start(ctx)

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Zoss Water WhatsApp Bot v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, cfg, routes.Handlers{
		WhatsApp: handlers.NewWhatsAppHandler(whatsappService, cfg.Webhook.VerifyToken),
		Outreach: handlers.NewOutreachHandler(whatsappService, store),
		Health:   handlers.NewHealthHandler(version, store, sessionStore),
	})

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		log.Println("🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping session sweep...")
		sweepJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Zoss Water Chatbot starting on port %s", cfg.Server.Port)
	log.Printf("🌍 Environment: %s", cfg.Server.Environment)
	log.Printf("📱 Webhook endpoint: /webhook/whatsapp")
	log.Printf("🔗 Health check: /health")
	log.Println("========================================")

	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Printf("❌ Server stopped: %v", err)
	}
}
