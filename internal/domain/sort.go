package domain

import (
	"fmt"
	"strings"
)

// SortClause — одно поле сортировки с направлением.
type SortClause struct {
	Field string
	Desc  bool
}

// Разрешённые поля сортировки списка продаж. Ключ — поле в нижнем
// регистре, значение — каноническое имя, которым оперируют репозитории.
var sortableFields = map[string]string{
	"id":     "id",
	"userid": "userId",
	"date":   "date",
}

// ParseSortOrder разбирает строку сортировки вида
// "field [asc|desc], field2 [asc|desc]". Направление по умолчанию — asc.
// Неизвестное поле или направление делает всю строку недействительной:
// ошибка возвращается целиком, части не отбрасываются молча.
// Пустая строка даёт nil без ошибки.
func ParseSortOrder(order string) ([]SortClause, error) {
	if strings.TrimSpace(order) == "" {
		return nil, nil
	}

	parts := strings.Split(order, ",")
	clauses := make([]SortClause, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty sort segment in %q", order)
		}

		fieldRaw := part
		direction := "asc"
		if idx := strings.IndexByte(part, ' '); idx >= 0 {
			fieldRaw = strings.TrimSpace(part[:idx])
			direction = strings.ToLower(strings.TrimSpace(part[idx+1:]))
		}

		field, ok := sortableFields[strings.ToLower(fieldRaw)]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", fieldRaw)
		}
		if direction != "asc" && direction != "desc" {
			return nil, fmt.Errorf("unknown sort direction %q", direction)
		}

		clauses = append(clauses, SortClause{Field: field, Desc: direction == "desc"})
	}

	return clauses, nil
}
