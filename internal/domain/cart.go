package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart — корзина пользователя, источник данных при создании продажи.
// Агрегат только читается; после конвертации продажа живёт независимо.
type Cart struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Date     time.Time
	Products []CartProduct
}

// CartProduct — товар корзины с количеством и ценой на момент снимка.
type CartProduct struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
	Status    Status
}

// NewSaleFromCart строит новую активную продажу из снимка корзины.
// Товар, количество и цена копируются как есть; удалённые товары корзины
// пропускаются. Дальнейшие изменения корзины на продажу не влияют.
func NewSaleFromCart(cart Cart, date time.Time, branch string, now time.Time) Sale {
	sale := Sale{
		ID:        uuid.New(),
		UserID:    cart.UserID,
		Branch:    branch,
		Date:      date,
		Status:    StatusActive,
		CreatedAt: now,
	}

	for _, product := range cart.Products {
		if product.Status == StatusDeleted {
			continue
		}
		sale.Items = append(sale.Items, SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: product.ProductID,
			Quantity:  product.Quantity,
			UnitPrice: product.UnitPrice,
			Status:    StatusActive,
			CreatedAt: now,
		})
	}

	sale.RecalculateTotal()
	return sale
}
