package domain

// Пороговые значения количественных скидок.
const (
	tenPercentMinQuantity    = 4
	twentyPercentMinQuantity = 10
)

// DiscountFactor возвращает множитель удерживаемой цены по количеству:
// до 4 единиц скидки нет, 4–9 — 10%, от 10 — 20%.
// Несмотря на название "скидка" в исходной модели, хранится именно доля
// удерживаемой цены (1.0/0.9/0.8), а не вычитаемая сумма.
func DiscountFactor(quantity int) float64 {
	switch {
	case quantity >= twentyPercentMinQuantity:
		return 0.8
	case quantity >= tenPercentMinQuantity:
		return 0.9
	default:
		// Ноль и отрицательные количества тоже попадают сюда: без скидки.
		return 1.0
	}
}

// LineTotal считает стоимость позиции: количество × цена × множитель скидки.
func LineTotal(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice * DiscountFactor(quantity)
}
