package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pawtrol/pawtrol-api/internal/config"
	"github.com/pawtrol/pawtrol-api/internal/events"
	"github.com/pawtrol/pawtrol-api/internal/platform/memory"
	"github.com/pawtrol/pawtrol-api/internal/platform/postgres"
	"github.com/pawtrol/pawtrol-api/internal/service/auth"
	"github.com/pawtrol/pawtrol-api/internal/service/dispatch"
	"github.com/pawtrol/pawtrol-api/internal/service/handshake"
	"github.com/pawtrol/pawtrol-api/internal/service/ledger"
	"github.com/pawtrol/pawtrol-api/internal/service/payments"
	"github.com/pawtrol/pawtrol-api/internal/service/relay"
	"github.com/pawtrol/pawtrol-api/internal/service/safety"
	"github.com/pawtrol/pawtrol-api/internal/store"
	"github.com/pawtrol/pawtrol-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when the memory backend is selected.
	db *sql.DB

	// Stores (using interfaces for proper abstraction)
	bookingStore  store.BookingStore
	offerStore    store.OfferStore
	providerStore store.ProviderStore
	petStore      store.PetStore
	paymentStore  store.PaymentStore
	locationStore store.LocationStore
	safetyStore   store.SafetyStore

	// Service interfaces
	jwtService       auth.JWTService
	ledgerService    ledger.LedgerService
	dispatchService  dispatch.DispatchService
	handshakeService handshake.HandshakeService
	relayService     relay.RelayService
	paymentsService  payments.PaymentsService
	safetyService    safety.SafetyService

	// Event system
	eventEmitter events.EventEmitter

	// Background offer expiry
	sweeper *task.OfferSweeper
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration and logger
// that must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT token validation initialized")

	if err := app.setupStores(ctx); err != nil {
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	app.ledgerService = ledger.NewLedgerService(
		app.bookingStore,
		app.offerStore,
		app.providerStore,
		app.petStore,
		app.eventEmitter,
		logger,
	)

	app.dispatchService = dispatch.NewDispatchService(
		app.bookingStore,
		app.offerStore,
		app.providerStore,
		app.eventEmitter,
		cfg.Dispatch,
		logger,
	)

	app.handshakeService = handshake.NewHandshakeService(
		app.bookingStore,
		app.eventEmitter,
		cfg.Handshake,
		logger,
	)

	app.relayService = relay.NewRelayService(
		app.bookingStore,
		app.locationStore,
		logger,
	)

	app.paymentsService = payments.NewPaymentsService(
		app.bookingStore,
		app.paymentStore,
		app.eventEmitter,
		logger,
	)

	app.safetyService = safety.NewSafetyService(
		app.bookingStore,
		app.safetyStore,
		app.relayService,
		&safety.LogNotifier{Logger: logger},
		app.eventEmitter,
		cfg.Safety,
		logger,
	)

	// The relay listens for terminal booking events to close its live
	// position channels.
	if handler, ok := app.relayService.(events.EventHandler); ok {
		emitter.RegisterHandler(handler)
	} else {
		return nil, fmt.Errorf("relay service does not handle booking events")
	}

	app.sweeper = task.NewOfferSweeper(
		app.offerStore,
		time.Duration(cfg.Dispatch.SweepIntervalSeconds)*time.Second,
		logger,
	)
	app.sweeper.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStores selects the storage backend and initializes the stores.
func (app *application) setupStores(ctx context.Context) error {
	switch app.config.Database.Backend {
	case "postgres":
		db, err := setupAppDatabase(ctx, app.config, app.logger)
		if err != nil {
			return err
		}
		if err := runMigrations(db, app.logger); err != nil {
			return err
		}
		app.db = db
		app.bookingStore = postgres.NewBookingStore(db, app.logger)
		app.offerStore = postgres.NewOfferStore(db, app.logger)
		app.providerStore = postgres.NewProviderStore(db, app.logger)
		app.petStore = postgres.NewPetStore(db, app.logger)
		app.paymentStore = postgres.NewPaymentStore(db, app.logger)
		app.locationStore = postgres.NewLocationStore(db, app.logger)
		app.safetyStore = postgres.NewSafetyStore(db, app.logger)
	case "memory":
		app.logger.Warn("using in-memory storage, data will not survive a restart")
		app.bookingStore = memory.NewBookingStore()
		app.offerStore = memory.NewOfferStore()
		app.providerStore = memory.NewProviderStore()
		app.petStore = memory.NewPetStore()
		app.paymentStore = memory.NewPaymentStore()
		app.locationStore = memory.NewLocationStore()
		app.safetyStore = memory.NewSafetyStore()
	default:
		return fmt.Errorf("unknown storage backend %q", app.config.Database.Backend)
	}
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
