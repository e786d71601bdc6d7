package domain

import "context"

// Имена типов доменных событий. Набор закрыт: каждое событие несёт
// собственную типизированную полезную нагрузку.
const (
	EventTypeSaleCreated   = "sale.created"
	EventTypeSaleCancelled = "sale.cancelled"
	EventTypeItemCancelled = "sale.item_cancelled"
)

// Event — доменное событие продажи.
type Event interface {
	EventType() string
}

// SaleCreated публикуется после сохранения новой продажи.
type SaleCreated struct {
	Sale Sale
}

func (SaleCreated) EventType() string { return EventTypeSaleCreated }

// SaleCancelled публикуется после логического удаления продажи.
type SaleCancelled struct {
	Sale Sale
}

func (SaleCancelled) EventType() string { return EventTypeSaleCancelled }

// ItemCancelled публикуется после отмены отдельной позиции.
// Несёт и позицию, и владеющую продажу.
type ItemCancelled struct {
	Item SaleItem
	Sale Sale
}

func (ItemCancelled) EventType() string { return EventTypeItemCancelled }

// EventPublisher публикует доменные события. С точки зрения ядра это
// fire-and-forget: гарантии доставки адаптер не даёт, ошибка публикации
// возвращается вызывающему как есть и не компенсируется.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
