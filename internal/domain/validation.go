package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSaleItems — документированный предел различных позиций в продаже.
	MaxSaleItems = 20

	minPageSize = 1
	maxPageSize = 100
)

// ValidateCreateSale проверяет запрос создания продажи из корзины.
func ValidateCreateSale(cartID uuid.UUID, date time.Time, now time.Time) []FieldError {
	var fields []FieldError
	if cartID == uuid.Nil {
		fields = append(fields, FieldError{Field: "cartId", Message: "cartId must be a valid uuid"})
	}
	fields = append(fields, validateSaleDate(date, now)...)
	return fields
}

// ValidateUpdateSale проверяет запрос обновления продажи.
func ValidateUpdateSale(userID uuid.UUID, date time.Time, items []ItemInput, now time.Time) []FieldError {
	var fields []FieldError
	if userID == uuid.Nil {
		fields = append(fields, FieldError{Field: "userId", Message: "userId must be a valid uuid"})
	}
	fields = append(fields, validateSaleDate(date, now)...)

	if len(items) == 0 {
		fields = append(fields, FieldError{Field: "products", Message: "products cannot be empty"})
	}
	if len(items) > MaxSaleItems {
		fields = append(fields, FieldError{
			Field:   "products",
			Message: fmt.Sprintf("products count must be less than or equal to %d", MaxSaleItems),
		})
	}
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("products[%d].productId", i),
				Message: "productId must be a valid uuid",
			})
		}
		if item.Quantity < 1 {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("products[%d].quantity", i),
				Message: "quantity must be greater than or equal to 1",
			})
		}
		if item.UnitPrice <= 0 {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("products[%d].unitPrice", i),
				Message: "unitPrice must be greater than 0",
			})
		}
	}
	return fields
}

// ValidateCancelItem проверяет идентификаторы запроса отмены позиции.
func ValidateCancelItem(saleID, productID uuid.UUID) []FieldError {
	var fields []FieldError
	if saleID == uuid.Nil {
		fields = append(fields, FieldError{Field: "saleId", Message: "saleId is required"})
	}
	if productID == uuid.Nil {
		fields = append(fields, FieldError{Field: "productId", Message: "productId is required"})
	}
	return fields
}

// ValidateListQuery проверяет параметры постраничного списка.
// Строка сортировки с неизвестным полем отклоняется целиком на этапе
// валидации, а не отбрасывается молча.
func ValidateListQuery(page, size int, order string) []FieldError {
	var fields []FieldError
	if page < 1 {
		fields = append(fields, FieldError{Field: "page", Message: "page number must be greater than or equal to 1"})
	}
	if size < minPageSize || size > maxPageSize {
		fields = append(fields, FieldError{
			Field:   "size",
			Message: fmt.Sprintf("size must be between %d and %d", minPageSize, maxPageSize),
		})
	}
	if _, err := ParseSortOrder(order); err != nil {
		fields = append(fields, FieldError{
			Field:   "order",
			Message: "order must be in the format 'field [asc|desc], field2 [asc|desc]' with fields id, userId, date",
		})
	}
	return fields
}

// Validate проверяет инварианты агрегата перед сохранением.
func (s *Sale) Validate() []FieldError {
	var fields []FieldError
	if s.UserID == uuid.Nil {
		fields = append(fields, FieldError{Field: "userId", Message: "userId must be a valid uuid"})
	}
	if len(s.Items) == 0 {
		fields = append(fields, FieldError{Field: "products", Message: "products cannot be empty"})
	}
	if len(s.Items) > MaxSaleItems {
		fields = append(fields, FieldError{
			Field:   "products",
			Message: fmt.Sprintf("products count must be less than or equal to %d", MaxSaleItems),
		})
	}
	for i, item := range s.Items {
		if !item.IsActive() {
			continue
		}
		if item.Quantity < 1 {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("products[%d].quantity", i),
				Message: "quantity must be greater than or equal to 1",
			})
		}
		if item.UnitPrice <= 0 {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("products[%d].unitPrice", i),
				Message: "unitPrice must be greater than 0",
			})
		}
	}
	return fields
}

// validateSaleDate требует, чтобы бизнес-дата не была в прошлом
// (сравнение по началу текущего дня в UTC).
func validateSaleDate(date time.Time, now time.Time) []FieldError {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(startOfDay) {
		return []FieldError{{Field: "date", Message: "date must be greater or equal than today"}}
	}
	return nil
}
