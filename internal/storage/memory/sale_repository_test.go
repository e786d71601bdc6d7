package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/storage/memory"
)

func newSale(userID uuid.UUID) domain.Sale {
	now := time.Now().UTC()
	sale := domain.Sale{
		ID:     uuid.New(),
		UserID: userID,
		Branch: "main",
		Date:   now,
		Status: domain.StatusActive,
		Items: []domain.SaleItem{
			{
				ID:        uuid.New(),
				ProductID: uuid.New(),
				Quantity:  5,
				UnitPrice: 10,
				Status:    domain.StatusActive,
				CreatedAt: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	sale.RecalculateTotal()
	return sale
}

func TestSaleRepository_CreateGet(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()
	sale := newSale(uuid.New())

	created, err := repo.Create(ctx, sale)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Number == 0 {
		t.Fatal("expected sale number to be assigned")
	}

	stored, err := repo.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.ID != sale.ID {
		t.Fatalf("unexpected sale ID: %s", stored.ID)
	}
	if stored.Number != created.Number {
		t.Fatalf("number mismatch: %d vs %d", stored.Number, created.Number)
	}
}

func TestSaleRepository_NumbersAreSequential(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, newSale(uuid.New()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := repo.Create(ctx, newSale(uuid.New()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.Number != first.Number+1 {
		t.Fatalf("expected sequential numbers, got %d then %d", first.Number, second.Number)
	}
}

func TestSaleRepository_GetMissing(t *testing.T) {
	repo := memory.NewSaleRepository()

	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestSaleRepository_DeletedSaleHidden(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()
	sale := newSale(uuid.New())

	if _, err := repo.Create(ctx, sale); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	stored.MarkDeleted(time.Now().UTC())
	if err := repo.Update(ctx, stored); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := repo.GetByID(ctx, sale.ID); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound after delete, got %v", err)
	}

	total, err := repo.Total(ctx)
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected deleted sale excluded from total, got %d", total)
	}
}

func TestSaleRepository_DeletedItemsFilteredOnRead(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()
	sale := newSale(uuid.New())
	sale.Items = append(sale.Items, domain.SaleItem{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Quantity:  2,
		UnitPrice: 20,
		Status:    domain.StatusDeleted,
	})

	if _, err := repo.Create(ctx, sale); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := repo.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 1 {
		t.Fatalf("expected deleted item to be filtered, got %d items", len(stored.Items))
	}
	if stored.Items[0].Status != domain.StatusActive {
		t.Fatalf("unexpected item status: %s", stored.Items[0].Status)
	}
}

func TestSaleRepository_UpdateKeepsDeletedItemHistory(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()
	sale := newSale(uuid.New())

	if _, err := repo.Create(ctx, sale); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Удаляем единственную позицию и сохраняем.
	stored, err := repo.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	stored.Items[0].MarkDeleted(time.Now().UTC())
	if err := repo.Update(ctx, stored); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Следующее чтение позиции не видит; запись должна сохранить историю.
	stored, err = repo.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 0 {
		t.Fatalf("expected no visible items, got %d", len(stored.Items))
	}

	replacement := domain.SaleItem{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Quantity:  1,
		UnitPrice: 5,
		Status:    domain.StatusActive,
	}
	replacement.Recalculate()
	stored.Items = append(stored.Items, replacement)
	stored.RecalculateTotal()
	if err := repo.Update(ctx, stored); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Видимая позиция теперь одна; вторая запись не стёрла удалённую.
	// Снова удаляем и убеждаемся, что продажа всё ещё читается.
	stored, err = repo.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].ID != replacement.ID {
		t.Fatalf("unexpected visible items: %+v", stored.Items)
	}
}

func TestSaleRepository_UpdateMissing(t *testing.T) {
	repo := memory.NewSaleRepository()

	err := repo.Update(context.Background(), newSale(uuid.New()))
	if !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestSaleRepository_GetActiveByUser(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()
	userID := uuid.New()
	sale := newSale(userID)

	if _, err := repo.Create(ctx, sale); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	active, err := repo.GetActiveByUser(ctx, userID)
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if active.ID != sale.ID {
		t.Fatalf("unexpected sale: %s", active.ID)
	}

	if _, err := repo.GetActiveByUser(ctx, uuid.New()); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound for unknown user, got %v", err)
	}

	// Завершённая продажа активной не считается.
	stored, err := repo.GetByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	stored.Status = domain.StatusCompleted
	if err := repo.Update(ctx, stored); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := repo.GetActiveByUser(ctx, userID); !errors.Is(err, domain.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound for completed sale, got %v", err)
	}
}

func TestSaleRepository_ListPaginationAndSort(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		sale := newSale(uuid.New())
		sale.Date = base.Add(time.Duration(i) * time.Hour)
		created, err := repo.Create(ctx, sale)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		ids = append(ids, created.ID)
	}

	order := []domain.SortClause{{Field: "date", Desc: true}}

	page1, err := repo.List(ctx, 1, 2, order)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("expected 2 sales on page 1, got %d", len(page1))
	}
	if page1[0].ID != ids[4] || page1[1].ID != ids[3] {
		t.Fatalf("unexpected page order: %s, %s", page1[0].ID, page1[1].ID)
	}

	page3, err := repo.List(ctx, 3, 2, order)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page3) != 1 || page3[0].ID != ids[0] {
		t.Fatalf("unexpected last page: %+v", page3)
	}

	empty, err := repo.List(ctx, 4, 2, order)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(empty))
	}
}

func TestSaleRepository_ListDefaultOrderIsByNumber(t *testing.T) {
	repo := memory.NewSaleRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, newSale(uuid.New()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := repo.Create(ctx, newSale(uuid.New()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	listed, err := repo.List(ctx, 1, 10, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != first.ID || listed[1].ID != second.ID {
		t.Fatalf("unexpected default order: %+v", listed)
	}
}

func TestCartRepository_PutGet(t *testing.T) {
	repo := memory.NewCartRepository()
	ctx := context.Background()

	cart := domain.Cart{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Date:   time.Now().UTC(),
		Products: []domain.CartProduct{
			{ProductID: uuid.New(), Quantity: 3, UnitPrice: 7.5, Status: domain.StatusActive},
		},
	}
	repo.Put(cart)

	stored, err := repo.GetByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.UserID != cart.UserID || len(stored.Products) != 1 {
		t.Fatalf("unexpected cart: %+v", stored)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}
