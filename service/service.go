package service

import (
	"context"
	"errors"
	"fmt"
	"lessons/booking"
	"lessons/clients"
	"lessons/config"
	"lessons/http"
	"lessons/memory"
	"lessons/message"
	"lessons/postgres"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Deps struct {
	Config config.App
	Logger watermill.LoggerAdapter

	// DB is nil when no connection string is configured.
	DB          *sqlx.DB
	RedisClient *redis.Client

	// Checkout and Sender override the clients built from Config.
	Checkout booking.CheckoutCreator
	Sender   message.ConfirmationSender
}

type Service struct {
	config     config.App
	bookings   *booking.Service
	msgRouter  *message.Router
	forwarder  *message.Forwarder
	httpRouter *echo.Echo
}

func New(deps Deps) (*Service, error) {
	cfg := deps.Config

	var (
		transport message.Transport
		err       error
	)
	if deps.RedisClient != nil {
		transport, err = message.NewRedisTransport(deps.RedisClient, deps.Logger)
		if err != nil {
			return nil, fmt.Errorf("creating redis transport: %w", err)
		}
	} else {
		transport = message.NewGoChannelTransport(deps.Logger)
	}

	var (
		store     booking.Store
		forwarder *message.Forwarder
	)
	switch {
	case cfg.StoreBackend == "memory":
		eventBus, err := message.NewEventBus(transport.Publisher, deps.Logger)
		if err != nil {
			return nil, err
		}
		store = memory.NewStore(eventBus)
	case deps.DB != nil:
		store = postgres.NewStore(deps.DB, deps.Logger)
		forwarder, err = message.NewForwarder(deps.DB, transport.Publisher, deps.Logger)
		if err != nil {
			return nil, err
		}
	default:
		store = booking.UnconfiguredStore{}
	}

	sender := deps.Sender
	if sender == nil {
		if cfg.EmailConfigured() {
			sender = clients.NewEmailClient(cfg.ResendAPIKey, cfg.BookingsFromEmail)
		} else {
			sender = clients.LogSender{}
		}
	}

	msgRouter, err := message.NewRouter(message.RouterDeps{
		ConfirmationSender: sender,
		Location:           cfg.Location(),
		Logger:             deps.Logger,
		Transport:          transport,
	})
	if err != nil {
		return nil, fmt.Errorf("creating message router: %w", err)
	}

	checkout := deps.Checkout
	if checkout == nil && cfg.StripeConfigured() {
		checkout = clients.NewCheckoutClient(cfg.StripeSecretKey)
	}
	hosted := booking.NewHosted(store, checkout, cfg.BaseURL, cfg.StripeWebhookSecret)

	var (
		adapter booking.PaymentAdapter = hosted
		cards   http.CardConfirmer
	)
	if cfg.PaymentsProvider == booking.ProviderFake {
		simulated := booking.NewSimulated(store)
		adapter = simulated
		cards = simulated
	}

	bookings := booking.NewService(store, adapter, cfg.Currency, cfg.Location())

	httpRouter := http.NewRouter(http.RouterDeps{
		Bookings: bookings,
		Cards:    cards,
		Webhooks: hosted,
		Location: cfg.Location(),
		Currency: cfg.Currency,
	})

	return &Service{
		config:     cfg,
		bookings:   bookings,
		msgRouter:  msgRouter,
		forwarder:  forwarder,
		httpRouter: httpRouter,
	}, nil
}

func (s Service) Run(ctx context.Context) error {
	if s.config.SeedCatalog {
		if err := s.bookings.SeedCatalog(ctx); err != nil {
			if !errors.Is(err, booking.ErrNotConfigured) {
				return err
			}
			log.FromContext(ctx).WithError(err).Warn("Skipping catalog seed")
		}
	}

	g, runCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.msgRouter.Run(runCtx); err != nil {
			return fmt.Errorf("running messaging router: %w", err)
		}

		return nil
	})

	if s.forwarder != nil {
		g.Go(func() error {
			if err := s.forwarder.Run(runCtx); err != nil {
				return fmt.Errorf("running outbox forwarder: %w", err)
			}

			return nil
		})
	}

	g.Go(func() error {
		// Wait for message router
		<-s.msgRouter.Running()

		logrus.WithField("addr", s.config.HTTPAddr).Info("Starting HTTP server...")
		err := s.httpRouter.Start(s.config.HTTPAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := s.httpRouter.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")

	return nil
}
