// Package app assembles the HTTP application from configuration and stores.
package app

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

// Stores groups the repositories the services run on.
type Stores struct {
	Persons repository.PersonRepository
	Tickets repository.TicketRepository
}

// MemoryStores returns fresh in-process repositories.
func MemoryStores() Stores {
	store := memory.NewStore()
	return Stores{Persons: store.Persons(), Tickets: store.Tickets()}
}

// PostgresStores returns repositories backed by the pool.
func PostgresStores(pg *persistence.Postgres) Stores {
	return Stores{
		Persons: repository.NewPersonRepository(pg.Pool),
		Tickets: repository.NewTicketRepository(pg.Pool),
	}
}

// Options configures New. Postgres and Redis are optional.
type Options struct {
	Config   *config.Config
	Logger   *zap.Logger
	Stores   Stores
	Postgres *persistence.Postgres
	Redis    *persistence.Redis
	Clock    func() time.Time
}

// App is the assembled service.
type App struct {
	Fiber   *fiber.App
	Seed    *service.SeedService
	Tokens  *auth.TokenManager
	Metrics *observability.Metrics

	notifications *worker.NotificationWorker
}

// New wires repositories, services, handlers and middleware.
func New(opts Options) *App {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics := observability.NewMetrics()
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	dispatcher := events.NewInMemoryDispatcher()

	var publisher service.EventPublisher
	if opts.Redis != nil {
		publisher = opts.Redis
	}
	notifications := worker.NewNotificationWorker(
		service.NewNotificationService(publisher, logger.Named("notifications")),
		logger, cfg.Redis.QueueSize)
	notifications.Subscribe(dispatcher)
	notifications.Start()

	personDeps := service.PersonDependencies{
		PersonRepo: opts.Stores.Persons,
		Hasher:     hasher,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
	clientService := service.NewClientService(personDeps)
	technicianService := service.NewTechnicianService(personDeps)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: opts.Stores.Tickets,
		PersonRepo: opts.Stores.Persons,
		Dispatcher: dispatcher,
		Logger:     logger,
		Clock:      opts.Clock,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		PersonRepo: opts.Stores.Persons,
		Hasher:     hasher,
		Tokens:     tokens,
		Logger:     logger,
	})

	deps := map[string]handlers.Pinger{}
	if opts.Postgres != nil {
		deps["postgres"] = opts.Postgres
	}
	if opts.Redis != nil {
		deps["redis"] = opts.Redis
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.NewErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Clients:        handlers.NewClientsHandler(clientService),
		Technicians:    handlers.NewTechniciansHandler(technicianService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, opts.Stores.Persons),
	})

	return &App{
		Fiber:   app,
		Seed:    service.NewSeedService(opts.Stores.Persons, opts.Stores.Tickets, hasher, logger),
		Tokens:  tokens,
		Metrics: metrics,

		notifications: notifications,
	}
}

// Shutdown stops accepting requests and flushes pending notifications.
func (a *App) Shutdown() error {
	err := a.Fiber.Shutdown()
	a.notifications.Stop()
	return err
}

// SeedIfEnabled loads demo data when configured to.
func (a *App) SeedIfEnabled(ctx context.Context, cfg config.SeedConfig) error {
	if !cfg.OnStart {
		return nil
	}
	_, err := a.Seed.Seed(ctx, cfg.Password)
	return err
}
