package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSaleNotFound возвращается, если продажа не найдена в репозитории.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrCartNotFound возвращается, если корзина не найдена в репозитории.
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound — в продаже нет активной позиции с таким товаром.
	ErrItemNotFound = errors.New("sale item not found")
	// ErrSaleCompleted — операция запрещена для завершённой продажи.
	ErrSaleCompleted = errors.New("sale is completed")
	// ErrActiveSaleExists — у пользователя уже есть активная продажа.
	ErrActiveSaleExists = errors.New("user already has an active sale")
)

// FieldError описывает одно нарушение правила валидации.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError агрегирует нарушения по полям запроса.
// Запрос отклоняется целиком; частичного успеха нет.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError оборачивает список нарушений; для пустого списка возвращает nil.
func NewValidationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// IsValidation проверяет, является ли ошибка ошибкой валидации запроса.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound проверяет, что запрошенная сущность отсутствует.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrItemNotFound)
}

// IsConflict проверяет, что операция запрещена текущим состоянием жизненного цикла.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSaleCompleted) || errors.Is(err, ErrActiveSaleExists)
}
