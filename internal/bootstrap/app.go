package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/logger"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/storage"
	"github.com/Domenick1991/airreservation/internal/validator"
)

const kafkaCheckTimeout = 5 * time.Second

// App is the wired process state: one catalog, one ledger, one gateway.
type App struct {
	Catalog   *flights.FlightCatalog
	Ledger    *booking.ReservationLedger
	Gateway   *storage.Gateway
	Persister *Persister
	// Validator is shared by the catalog and the HTTP layer.
	Validator *validator.Validator

	logger  *logger.Logger
	closers []func() error
}

// New opens storage, seeds it if empty, loads it and links the ledger to the catalog.
// Storage that cannot be opened is replaced by an in-memory store.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) *App {
	app := &App{logger: log, Validator: validator.New()}

	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		log.Error("storage unavailable, keeping state in memory only",
			"backend", cfg.Storage.Backend,
			"error", err,
		)
		store = storage.NewMemoryStore()
	}
	app.closers = append(app.closers, closeStore)

	app.Gateway = storage.NewGateway(store, log.With("component", "storage"))
	if cfg.Storage.SeedEnabled() {
		_, _ = app.Gateway.SeedIfAbsent(ctx, time.Now())
	}
	snapshot := app.Gateway.Load(ctx)

	catalogOpts := []flights.Option{flights.WithValidator(app.Validator)}
	if cfg.Catalog.UniqueFlightNumbers {
		catalogOpts = append(catalogOpts, flights.WithUniqueNumbers())
	}
	app.Catalog = flights.NewFlightCatalog(catalogOpts...)

	ledgerOpts := []booking.LedgerOption{
		booking.WithLogger(log.With("component", "ledger")),
		booking.WithIDGenerator(idGenerator(cfg.Ledger.IDStrategy, snapshot.Reservations)),
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log.With("component", "kafka"))
		app.closers = append(app.closers, producer.Close)
		checkKafka(ctx, producer, log)
		ledgerOpts = append(ledgerOpts,
			booking.WithProducer(producer, cfg.Kafka.ReservationsTopic),
			booking.WithPublishAttempts(cfg.Kafka.PublishAttempts),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}
	app.Ledger = booking.NewReservationLedger(app.Catalog, ledgerOpts...)

	_ = Apply(snapshot, app.Catalog, app.Ledger, log)
	app.Persister = NewPersister(app.Gateway, app.Ledger, cfg.Storage.BackupDir, log)
	return app
}

// checkKafka only warns: events are best effort and the writer reconnects on its own.
func checkKafka(ctx context.Context, producer *kafka.Producer, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, kafkaCheckTimeout)
	defer cancel()
	if err := producer.CheckConnection(ctx); err != nil {
		log.Warn("kafka unreachable, reservation events may be lost", "error", err)
	}
}

func idGenerator(strategy string, existing []domain.Reservation) booking.IDGenerator {
	if strategy != "sequential" {
		return booking.RandomIDs{}
	}
	ids := make([]string, 0, len(existing))
	for _, r := range existing {
		ids = append(ids, r.ID)
	}
	return booking.NewSequentialIDs(booking.LastSequence(ids))
}

// Close saves the final state and releases storage and kafka connections.
func (a *App) Close(ctx context.Context) error {
	errs := []error{}
	if err := a.Persister.Save(ctx); err != nil {
		errs = append(errs, err)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
