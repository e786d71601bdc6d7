package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

func testSale() domain.Sale {
	return domain.Sale{
		ID:          uuid.New(),
		Number:      42,
		UserID:      uuid.New(),
		Status:      domain.StatusActive,
		TotalAmount: 121.8,
		Date:        time.Now().UTC(),
	}
}

func TestPublisher_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	publisher := &Publisher{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-publisher-test"),
	}

	sale := testSale()
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope Envelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope.EventType != domain.EventTypeSaleCreated {
			return errors.New("unexpected event type " + envelope.EventType)
		}
		if envelope.SaleID != sale.ID {
			return errors.New("unexpected sale id")
		}
		return nil
	})

	err := publisher.Publish(context.Background(), domain.SaleCreated{Sale: sale})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPublisher_PublishItemCancelled(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	publisher := &Publisher{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-publisher-test"),
	}

	sale := testSale()
	item := domain.SaleItem{ID: uuid.New(), SaleID: sale.ID, ProductID: uuid.New()}

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var envelope Envelope
		if err := json.Unmarshal(value, &envelope); err != nil {
			return err
		}
		if envelope.EventType != domain.EventTypeItemCancelled {
			return errors.New("unexpected event type " + envelope.EventType)
		}
		if envelope.ProductID == nil || *envelope.ProductID != item.ProductID {
			return errors.New("product id missing from envelope")
		}
		return nil
	})

	err := publisher.Publish(context.Background(), domain.ItemCancelled{Item: item, Sale: sale})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPublisher_PublishError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	publisher := &Publisher{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-publisher-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := publisher.Publish(context.Background(), domain.SaleCreated{Sale: testSale()})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}
