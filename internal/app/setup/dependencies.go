package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/LavaJover/shvark-mypvit-relay/internal/config"
	"github.com/LavaJover/shvark-mypvit-relay/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/mongostore"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/natsbus"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-mypvit-relay/internal/infrastructure/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"

	EventsNone  = "none"
	EventsKafka = "kafka"
	EventsNats  = "nats"
)

type Dependencies struct {
	Config       *config.Config
	Logger       *slog.Logger
	Registry     *prometheus.Registry
	Metrics      *metrics.PaymentMetrics
	Observer     *telemetry.Observer
	Repositories *Repositories
	HealthChecks map[string]grpcapi.HealthCheck

	closers []io.Closer
}

type Repositories struct {
	SecretRepo      domain.SecretRepository
	TransactionRepo domain.TransactionRepository
	InventoryRepo   domain.InventoryRepository
	WebhookLogRepo  domain.WebhookLogRepository
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// InitializeDependencies opens the store and the event publisher selected by
// cfg. Close releases them in reverse order.
func InitializeDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	log, logCloser, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	slog.SetDefault(log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := &Dependencies{
		Config:       cfg,
		Logger:       log,
		Registry:     registry,
		Metrics:      metrics.NewPaymentMetrics(registry),
		HealthChecks: make(map[string]grpcapi.HealthCheck),
		closers:      []io.Closer{logCloser},
	}

	if err := deps.initStorage(ctx); err != nil {
		deps.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	publisher, err := initPublisher(cfg.Events)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("events: %w", err)
	}
	deps.Observer = telemetry.NewObserver(log, deps.Metrics, publisher)
	deps.closers = append(deps.closers, deps.Observer)

	return deps, nil
}

func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func (d *Dependencies) initStorage(ctx context.Context) error {
	switch d.Config.Storage.Driver {
	case StorageMemory:
		store := memory.NewStore()
		d.Repositories = &Repositories{
			SecretRepo:      store,
			TransactionRepo: store,
			InventoryRepo:   store,
			WebhookLogRepo:  store,
		}
		slog.Warn("using in-memory storage, nothing survives a restart")
		return nil

	case StorageMongo:
		client, err := mongostore.NewMongoClient(ctx, d.Config.Storage.MongoURI)
		if err != nil {
			return err
		}
		d.closers = append(d.closers, closerFunc(func() error { return client.Disconnect(context.Background()) }))
		store := mongostore.NewStore(client, d.Config.Storage.MongoDatabase)
		if err := store.EnsureIndexes(ctx); err != nil {
			return err
		}
		d.Repositories = &Repositories{
			SecretRepo:      store,
			TransactionRepo: store,
			InventoryRepo:   store,
			WebhookLogRepo:  store,
		}
		d.HealthChecks[StorageMongo] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return nil

	case StoragePostgres, "":
		db, err := OpenPostgres(d.Config)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		d.closers = append(d.closers, sqlDB)
		d.Repositories = &Repositories{
			SecretRepo:      repository.NewDefaultSecretRepository(db),
			TransactionRepo: repository.NewDefaultTransactionRepository(db),
			InventoryRepo:   repository.NewDefaultInventoryRepository(db),
			WebhookLogRepo:  logger.NewPGWebhookLogger(db),
		}
		d.HealthChecks[StoragePostgres] = sqlDB.PingContext
		return nil

	default:
		return fmt.Errorf("%w: unknown storage driver %q", domain.ErrConfiguration, d.Config.Storage.Driver)
	}
}

// OpenPostgres connects and brings the schema up to date, with the SQL
// migrations when a path is configured and with gorm otherwise.
func OpenPostgres(cfg *config.Config) (*gorm.DB, error) {
	db, err := postgres.InitDB(cfg.Storage.Dsn)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.Storage.MigrationsPath); err != nil {
			return nil, err
		}
		return db, nil
	}
	if err := postgres.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := logger.NewPGWebhookLogger(db).AutoMigrate(); err != nil {
		return nil, fmt.Errorf("auto migrate webhook log: %w", err)
	}
	return db, nil
}

func initPublisher(cfg config.Events) (domain.PublisherPort, error) {
	switch cfg.Driver {
	case EventsNone, "":
		return nil, nil
	case EventsKafka:
		if len(cfg.Brokers) == 0 {
			return nil, fmt.Errorf("%w: events.brokers is empty", domain.ErrConfiguration)
		}
		return kafka.NewKafkaPublisher(cfg.Brokers, cfg.Topic), nil
	case EventsNats:
		return natsbus.NewNatsPublisher(cfg.NatsURL, cfg.NatsSubject)
	default:
		return nil, fmt.Errorf("%w: unknown events driver %q", domain.ErrConfiguration, cfg.Driver)
	}
}
