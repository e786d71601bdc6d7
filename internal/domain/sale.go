package domain

import (
	"time"

	"github.com/google/uuid"
)

// SaleItem представляет одну позицию продажи.
type SaleItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID uuid.UUID
	// SaleID — обратная ссылка на продажу; позиция не живёт отдельно от неё.
	SaleID uuid.UUID
	// ProductID — внешний идентификатор товара.
	ProductID uuid.UUID
	// Quantity — количество единиц товара, всегда >= 1.
	Quantity int
	// UnitPrice — цена за единицу.
	UnitPrice float64
	// Discount — производный множитель удерживаемой цены (см. DiscountFactor).
	Discount float64
	// TotalAmount — производная стоимость позиции.
	TotalAmount float64
	// Status принимает только StatusActive и StatusDeleted.
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt time.Time
}

// Recalculate пересчитывает производные поля позиции из текущих количества и цены.
func (p *SaleItem) Recalculate() {
	p.Discount = DiscountFactor(p.Quantity)
	p.TotalAmount = LineTotal(p.Quantity, p.UnitPrice)
}

// IsActive сообщает, учитывается ли позиция в сумме продажи.
func (p *SaleItem) IsActive() bool {
	return p.Status == StatusActive
}

// MarkDeleted выполняет логическое удаление позиции. Переход необратим.
func (p *SaleItem) MarkDeleted(now time.Time) {
	p.Status = StatusDeleted
	p.DeletedAt = now
	p.UpdatedAt = now
}

// Sale агрегирует состояние продажи и её позиции.
type Sale struct {
	ID uuid.UUID
	// Number — сквозной номер продажи, назначается хранилищем при создании.
	Number int64
	UserID uuid.UUID
	// Branch — филиал, в котором оформлена продажа.
	Branch string
	// Date — бизнес-дата продажи.
	Date   time.Time
	Status Status
	// TotalAmount — производная сумма по активным позициям; извне не назначается.
	TotalAmount float64
	Items       []SaleItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   time.Time
}

// ItemInput описывает желаемое состояние позиции во входном наборе реконсиляции.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

// RecalculateTotal пересчитывает скидку и стоимость каждой позиции и суммирует
// только активные. Удалённые позиции тоже пересчитываются — их сохранённые поля
// остаются согласованными для аудита, но в сумму не входят.
// Повторный вызов без изменений агрегата даёт тот же результат.
func (s *Sale) RecalculateTotal() {
	var total float64
	for i := range s.Items {
		item := &s.Items[i]
		item.Recalculate()
		if item.IsActive() {
			total += item.TotalAmount
		}
	}
	s.TotalAmount = total
}

// IsCompleted проверяет, завершена ли продажа.
// Для завершённой продажи запрещены удаление и отмена позиций.
func (s *Sale) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// MarkDeleted выполняет логическое удаление продажи.
func (s *Sale) MarkDeleted(now time.Time) {
	s.Status = StatusDeleted
	s.DeletedAt = now
	s.UpdatedAt = now
}

// ActiveItem возвращает активную позицию по товару или nil.
// Указатель действителен до следующего изменения списка позиций.
func (s *Sale) ActiveItem(productID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ProductID == productID && s.Items[i].IsActive() {
			return &s.Items[i]
		}
	}
	return nil
}

// Reconcile приводит набор позиций к желаемому состоянию incoming:
//   - активная позиция, товара которой нет во входном наборе, помечается удалённой;
//   - товар без активной позиции добавляется с указанными количеством и ценой;
//   - при изменившемся количестве обновляются количество и updated_at;
//   - совпадающая позиция не трогается.
//
// При дубликатах ProductID во входном наборе действует первое вхождение.
// Пустой incoming помечает удалёнными все активные позиции.
// После реконсиляции вызывающий обязан выполнить RecalculateTotal.
func (s *Sale) Reconcile(incoming []ItemInput, now time.Time) {
	wanted := make(map[uuid.UUID]struct{}, len(incoming))
	for _, in := range incoming {
		wanted[in.ProductID] = struct{}{}
	}

	for i := range s.Items {
		item := &s.Items[i]
		if !item.IsActive() {
			continue
		}
		if _, ok := wanted[item.ProductID]; !ok {
			item.MarkDeleted(now)
		}
	}

	applied := make(map[uuid.UUID]struct{}, len(incoming))
	for _, in := range incoming {
		if _, dup := applied[in.ProductID]; dup {
			continue
		}
		applied[in.ProductID] = struct{}{}

		existing := s.ActiveItem(in.ProductID)
		if existing == nil {
			s.Items = append(s.Items, SaleItem{
				ID:        uuid.New(),
				SaleID:    s.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: in.UnitPrice,
				Status:    StatusActive,
				CreatedAt: now,
			})
			continue
		}
		if existing.Quantity != in.Quantity {
			existing.Quantity = in.Quantity
			existing.UpdatedAt = now
		}
	}
}

// CancelItem помечает активную позицию товара удалённой и пересчитывает сумму.
// Возвращает отменённую позицию; ErrSaleCompleted для завершённой продажи,
// ErrItemNotFound если активной позиции с таким товаром нет.
func (s *Sale) CancelItem(productID uuid.UUID, now time.Time) (SaleItem, error) {
	if s.IsCompleted() {
		return SaleItem{}, ErrSaleCompleted
	}
	item := s.ActiveItem(productID)
	if item == nil {
		return SaleItem{}, ErrItemNotFound
	}
	item.MarkDeleted(now)
	s.RecalculateTotal()
	s.UpdatedAt = now
	return *item, nil
}
