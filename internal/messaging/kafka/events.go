package kafka

import (
	"time"

	"github.com/google/uuid"
)

// TopicSaleEvents — единственный топик событий продаж.
const TopicSaleEvents = "sales.sale.events"

// Envelope — формат сообщения в топике событий продаж.
// Ключ сообщения — идентификатор продажи, поэтому события одной продажи
// попадают в одну партицию и сохраняют порядок.
type Envelope struct {
	EventType   string     `json:"event_type"`
	SaleID      uuid.UUID  `json:"sale_id"`
	SaleNumber  int64      `json:"sale_number"`
	UserID      uuid.UUID  `json:"user_id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	TotalAmount float64    `json:"total_amount"`
	Timestamp   time.Time  `json:"timestamp"`
}
