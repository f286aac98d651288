package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"carechat/internal/config"
	"carechat/internal/core"
	"carechat/internal/guardrail"
	httpserver "carechat/internal/http"
	"carechat/internal/intent"
	"carechat/internal/jobs"
	"carechat/internal/kb"
	"carechat/internal/logging"
	"carechat/internal/store"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	logging.Init()
	cfg := config.Load()

	knowledgeBase, err := kb.Load(cfg.KnowledgeBasePath)
	if err != nil {
		log.Fatalf("failed to load knowledge base: %v", err)
	}

	// Stores: Postgres when a DSN is configured, in-memory otherwise.
	var (
		conversations store.ConversationStore
		tickets       store.TicketStore
		appointments  store.AppointmentStore
	)
	if cfg.DatabaseURL != "" {
		dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dbConn.PingContext(pingCtx); err != nil {
			log.Fatalf("failed to ping database: %v", err)
		}
		if err := store.Migrate(context.Background(), dbConn); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		notifier := store.NewNotifier(dbConn, cfg.DatabaseURL, cfg.NotifyChannel)
		conversations = store.NewPostgresConversationStore(dbConn)
		tickets = store.NewPostgresTicketStore(dbConn, notifier)
		appointments = store.NewPostgresAppointmentStore(dbConn)
		log.Println("using postgres stores")
	} else {
		conversations = store.NewMemoryConversationStore()
		tickets = store.NewMemoryTicketStore()
		appointments = store.NewMemoryAppointmentStore()
		log.Println("DATABASE_URL not set, using in-memory stores")
	}

	engine := core.NewEngine(
		intent.NewClassifier(),
		core.NewHandlers(appointments, tickets, knowledgeBase),
		conversations,
		guardrail.NewFilter(),
	)

	scheduler := jobs.NewScheduler()
	scheduler.Register(jobs.NewSessionReaper(conversations, cfg.SessionIdleTTL))
	scheduler.Start()

	app := fiber.New(fiber.Config{
		AppName:      "carechat",
		ErrorHandler: fiberErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("carechat")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	chatHandler := httpserver.NewChatHandler(engine, cfg.RequestTimeout)
	ticketHandler := httpserver.NewTicketHandler(tickets)
	appointmentHandler := httpserver.NewAppointmentHandler(appointments)
	healthHandler := httpserver.NewHealthHandler()

	app.Get("/health", healthHandler.Handle)
	api := app.Group("/api")
	api.Post("/chat/message", chatHandler.PostMessage)
	api.Get("/chat/history/:sessionID", chatHandler.GetHistory)
	api.Get("/tickets/:userID", ticketHandler.ListByUser)
	api.Get("/appointments/:userID", appointmentHandler.ListByUser)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		scheduler.Stop()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Printf("listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func fiberErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
