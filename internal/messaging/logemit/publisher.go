package logemit

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// Publisher пишет доменные события в структурированный лог вместо брокера.
// Используется по умолчанию, когда Kafka не настроена.
type Publisher struct {
	logger *log.Entry
}

// NewPublisher создаёт логирующего издателя событий.
func NewPublisher(logger *log.Entry) *Publisher {
	if logger == nil {
		logger = log.New().WithField("component", "event-publisher")
	}
	return &Publisher{logger: logger}
}

// Publish логирует событие и всегда завершается успешно.
func (p *Publisher) Publish(_ context.Context, event domain.Event) error {
	fields := log.Fields{"event_type": event.EventType()}

	switch e := event.(type) {
	case domain.SaleCreated:
		fields["sale_id"] = e.Sale.ID
		fields["user_id"] = e.Sale.UserID
		fields["total"] = e.Sale.TotalAmount
	case domain.SaleCancelled:
		fields["sale_id"] = e.Sale.ID
		fields["user_id"] = e.Sale.UserID
	case domain.ItemCancelled:
		fields["sale_id"] = e.Sale.ID
		fields["product_id"] = e.Item.ProductID
	}

	p.logger.WithFields(fields).Info("domain event published")
	return nil
}

var _ domain.EventPublisher = (*Publisher)(nil)
