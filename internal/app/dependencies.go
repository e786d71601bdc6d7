package app

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/sales/internal/messaging/logemit"
	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
	"github.com/vladislavdragonenkov/sales/internal/storage/postgres"
)

// Dependencies содержит собранные адаптеры приложения.
type Dependencies struct {
	Sales     domain.SaleRepository
	Carts     domain.CartRepository
	Publisher domain.EventPublisher
	Store     *postgres.Store
	Logger    *log.Entry

	closers []io.Closer
}

// NewDependencies инициализирует хранилище и издателя событий по конфигурации.
// С PostgresDSN используются PostgreSQL-репозитории (схема применяется на
// старте), без него — in-memory. Издатель — Kafka при наличии брокеров,
// иначе логирующий.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		deps.Store = store
		deps.Sales = postgres.NewSaleRepository(store)
		deps.Carts = postgres.NewCartRepository(store)
		deps.closers = append(deps.closers, store)
		logger.Info("postgres storage initialized")
	} else {
		deps.Sales = memory.NewSaleRepository()
		deps.Carts = memory.NewCartRepository()
		logger.Info("in-memory storage initialized")
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka publisher, falling back to log publisher")
		} else {
			deps.Publisher = publisher
			deps.closers = append(deps.closers, publisher)
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka publisher initialized")
		}
	}
	if deps.Publisher == nil {
		deps.Publisher = logemit.NewPublisher(logger.WithField("component", "event-publisher"))
	}

	return deps, nil
}

// Close освобождает ресурсы в обратном порядке инициализации.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close dependency")
		}
	}
}
