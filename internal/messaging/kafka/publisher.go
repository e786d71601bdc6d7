package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// Publisher отправляет доменные события продаж в Kafka.
type Publisher struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// NewPublisher создает нового издателя событий поверх Kafka.
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll // Wait for all in-sync replicas
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true // Включаем идемпотентность
	config.Net.MaxOpenRequests = 1    // Для идемпотентности

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Publisher{
		producer: producer,
		logger:   log.WithField("component", "kafka-publisher"),
	}, nil
}

// Publish сериализует событие в конверт и синхронно отправляет в топик.
func (p *Publisher) Publish(_ context.Context, event domain.Event) error {
	envelope, err := buildEnvelope(event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     TopicSaleEvents,
		Key:       sarama.StringEncoder(envelope.SaleID.String()),
		Value:     sarama.ByteEncoder(data),
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic":      TopicSaleEvents,
			"event_type": envelope.EventType,
			"sale_id":    envelope.SaleID,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":      TopicSaleEvents,
		"event_type": envelope.EventType,
		"sale_id":    envelope.SaleID,
		"partition":  partition,
		"offset":     offset,
	}).Debug("message sent to kafka")

	return nil
}

// Close закрывает producer.
func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

func buildEnvelope(event domain.Event) (Envelope, error) {
	now := time.Now().UTC()

	switch e := event.(type) {
	case domain.SaleCreated:
		return Envelope{
			EventType:   e.EventType(),
			SaleID:      e.Sale.ID,
			SaleNumber:  e.Sale.Number,
			UserID:      e.Sale.UserID,
			TotalAmount: e.Sale.TotalAmount,
			Timestamp:   now,
		}, nil
	case domain.SaleCancelled:
		return Envelope{
			EventType:   e.EventType(),
			SaleID:      e.Sale.ID,
			SaleNumber:  e.Sale.Number,
			UserID:      e.Sale.UserID,
			TotalAmount: e.Sale.TotalAmount,
			Timestamp:   now,
		}, nil
	case domain.ItemCancelled:
		productID := e.Item.ProductID
		return Envelope{
			EventType:   e.EventType(),
			SaleID:      e.Sale.ID,
			SaleNumber:  e.Sale.Number,
			UserID:      e.Sale.UserID,
			ProductID:   &productID,
			TotalAmount: e.Sale.TotalAmount,
			Timestamp:   now,
		}, nil
	default:
		return Envelope{}, fmt.Errorf("unknown event type %q", event.EventType())
	}
}

var _ domain.EventPublisher = (*Publisher)(nil)
