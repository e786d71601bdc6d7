package domain

import (
	"context"

	"github.com/google/uuid"
)

// SaleRepository описывает требования к хранилищу продаж.
//
// Репозиторий не выполняет блокировок: конкурентные обновления одной
// продажи разрешаются по принципу "последняя запись побеждает". Это
// осознанное решение, унаследованное от исходной системы, а не упущение.
type SaleRepository interface {
	// Create сохраняет новую продажу и назначает ей сквозной номер.
	// Возвращает сохранённую продажу.
	Create(ctx context.Context, sale Sale) (Sale, error)
	// Update применяет изменения к продаже, включая логически удалённые позиции.
	Update(ctx context.Context, sale Sale) error
	// GetByID возвращает продажу без удалённых позиций или ErrSaleNotFound.
	// Логически удалённые продажи считаются отсутствующими.
	GetByID(ctx context.Context, id uuid.UUID) (Sale, error)
	// GetActiveByUser возвращает активную продажу пользователя или ErrSaleNotFound.
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (Sale, error)
	// List возвращает страницу продаж: skip = size*(page-1), take = size.
	// Поля сортировки применяются слева направо, каждое со своим направлением.
	List(ctx context.Context, page, size int, order []SortClause) ([]Sale, error)
	// Total возвращает общее количество продаж.
	Total(ctx context.Context) (int, error)
}

// CartRepository даёт доступ на чтение к корзинам для снимка при создании продажи.
type CartRepository interface {
	// GetByID возвращает корзину или ErrCartNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (Cart, error)
}
