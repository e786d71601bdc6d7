package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// saleRepositoryInMemory — простая in-memory реализация SaleRepository.
type saleRepositoryInMemory struct {
	mu         sync.RWMutex
	items      map[uuid.UUID]domain.Sale
	nextNumber int64
}

// NewSaleRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewSaleRepository() domain.SaleRepository {
	return &saleRepositoryInMemory{
		items: make(map[uuid.UUID]domain.Sale),
	}
}

// Create сохраняет новую продажу, присваивая ей порядковый номер.
func (r *saleRepositoryInMemory) Create(_ context.Context, sale domain.Sale) (domain.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	r.nextNumber++
	sale.Number = r.nextNumber

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[sale.ID] = cloneSale(sale)
	return cloneSale(sale), nil
}

// GetByID возвращает продажу без логически удалённых позиций
// или ErrSaleNotFound, если продажи нет либо она удалена.
func (r *saleRepositoryInMemory) GetByID(_ context.Context, id uuid.UUID) (domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sale, ok := r.items[id]
	if !ok || sale.Status == domain.StatusDeleted {
		return domain.Sale{}, domain.ErrSaleNotFound
	}
	return visibleSale(sale), nil
}

// GetActiveByUser возвращает активную продажу пользователя, если она есть.
func (r *saleRepositoryInMemory) GetActiveByUser(_ context.Context, userID uuid.UUID) (domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sale := range r.items {
		if sale.UserID == userID && sale.Status == domain.StatusActive {
			return visibleSale(sale), nil
		}
	}
	return domain.Sale{}, domain.ErrSaleNotFound
}

// Update перезаписывает продажу, сохраняя историю удалённых позиций.
// Последняя запись побеждает: версионирования здесь нет.
func (r *saleRepositoryInMemory) Update(_ context.Context, sale domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[sale.ID]
	if !ok {
		return domain.ErrSaleNotFound
	}

	// Чтение отфильтровало ранее удалённые позиции, поэтому при записи
	// объединяем входящий набор с сохранённой историей.
	incoming := make(map[uuid.UUID]struct{}, len(sale.Items))
	merged := cloneSale(sale)
	for _, item := range merged.Items {
		incoming[item.ID] = struct{}{}
	}
	for _, item := range stored.Items {
		if _, ok := incoming[item.ID]; !ok {
			merged.Items = append(merged.Items, item)
		}
	}
	merged.Number = stored.Number

	r.items[sale.ID] = merged
	return nil
}

// List возвращает страницу неудалённых продаж в заданном порядке.
func (r *saleRepositoryInMemory) List(_ context.Context, page, size int, order []domain.SortClause) ([]domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Sale, 0, len(r.items))
	for _, sale := range r.items {
		if sale.Status == domain.StatusDeleted {
			continue
		}
		result = append(result, visibleSale(sale))
	}

	sort.Slice(result, func(i, j int) bool {
		return lessSales(result[i], result[j], order)
	})

	skip := size * (page - 1)
	if skip >= len(result) {
		return []domain.Sale{}, nil
	}
	result = result[skip:]
	if len(result) > size {
		result = result[:size]
	}
	return result, nil
}

// Total возвращает количество неудалённых продаж.
func (r *saleRepositoryInMemory) Total(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, sale := range r.items {
		if sale.Status != domain.StatusDeleted {
			total++
		}
	}
	return total, nil
}

// lessSales сравнивает продажи по списку полей сортировки, с номером
// продажи как финальным разрешителем для стабильного порядка.
func lessSales(a, b domain.Sale, order []domain.SortClause) bool {
	for _, clause := range order {
		var cmp int
		switch clause.Field {
		case "id":
			cmp = strings.Compare(a.ID.String(), b.ID.String())
		case "userId":
			cmp = strings.Compare(a.UserID.String(), b.UserID.String())
		case "date":
			switch {
			case a.Date.Before(b.Date):
				cmp = -1
			case a.Date.After(b.Date):
				cmp = 1
			}
		}
		if cmp == 0 {
			continue
		}
		if clause.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return a.Number < b.Number
}

// visibleSale возвращает копию продажи без логически удалённых позиций.
func visibleSale(sale domain.Sale) domain.Sale {
	out := sale
	out.Items = make([]domain.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		if item.Status == domain.StatusDeleted {
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func cloneSale(sale domain.Sale) domain.Sale {
	out := sale
	out.Items = make([]domain.SaleItem, len(sale.Items))
	copy(out.Items, sale.Items)
	return out
}

var _ domain.SaleRepository = (*saleRepositoryInMemory)(nil)
