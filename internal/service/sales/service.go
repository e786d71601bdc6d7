package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/metrics"
)

// CreateSaleInput — запрос создания продажи из снимка корзины.
type CreateSaleInput struct {
	CartID uuid.UUID
	Date   time.Time
	Branch string
}

// UpdateSaleInput — запрос обновления продажи с желаемым набором позиций.
type UpdateSaleInput struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Date     time.Time
	Products []domain.ItemInput
}

// ListSalesInput — параметры постраничного списка продаж.
type ListSalesInput struct {
	Page  int
	Size  int
	Order string
}

// ListSalesResult — страница продаж и общее количество.
type ListSalesResult struct {
	Sales      []domain.Sale
	TotalItems int
}

// CancelItemResult подтверждает отмену позиции.
type CancelItemResult struct {
	SaleID    uuid.UUID
	ProductID uuid.UUID
}

// Service оркестрирует операции над продажами поверх доменных портов.
// Каждая операция — синхронная последовательность read → mutate → persist;
// внутренних ретраев и компенсаций нет, ошибки инфраструктуры уходят
// вызывающему без изменений.
type Service struct {
	sales     domain.SaleRepository
	carts     domain.CartRepository
	publisher domain.EventPublisher
	logger    *log.Entry
	metrics   *metrics.SalesMetrics
	now       func() time.Time
}

// NewService создаёт рабочий экземпляр сервиса продаж.
func NewService(
	sales domain.SaleRepository,
	carts domain.CartRepository,
	publisher domain.EventPublisher,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "sales")
	}
	return &Service{
		sales:     sales,
		carts:     carts,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics.NewSalesMetrics(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(
	sales domain.SaleRepository,
	carts domain.CartRepository,
	publisher domain.EventPublisher,
	logger *log.Entry,
) *Service {
	svc := NewService(sales, carts, publisher, logger)
	svc.metrics = nil
	return svc
}

// CreateSale создаёт продажу из корзины: загружает корзину, проверяет,
// что у пользователя нет другой активной продажи, копирует позиции и
// публикует SaleCreated после сохранения.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (domain.Sale, error) {
	defer s.trackOperation("create_sale")()

	now := s.now()
	if err := domain.NewValidationError(domain.ValidateCreateSale(in.CartID, in.Date, now)); err != nil {
		return domain.Sale{}, err
	}

	cart, err := s.carts.GetByID(ctx, in.CartID)
	if err != nil {
		s.logger.WithError(err).WithField("cart_id", in.CartID).Warn("cart lookup failed")
		return domain.Sale{}, err
	}

	// Одна активная продажа на пользователя.
	if _, err := s.sales.GetActiveByUser(ctx, cart.UserID); err == nil {
		return domain.Sale{}, domain.ErrActiveSaleExists
	} else if !errors.Is(err, domain.ErrSaleNotFound) {
		return domain.Sale{}, err
	}

	sale := domain.NewSaleFromCart(cart, in.Date, in.Branch, now)
	if err := domain.NewValidationError(sale.Validate()); err != nil {
		return domain.Sale{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.Sale{}, err
	}

	created, err := s.sales.Create(ctx, sale)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("create sale: %w", err)
	}

	if err := s.publish(ctx, domain.SaleCreated{Sale: created}); err != nil {
		// Продажа уже сохранена; ошибка публикации не компенсируется.
		return domain.Sale{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleCreated()
	}
	s.logger.WithFields(log.Fields{
		"sale_id": created.ID,
		"user_id": created.UserID,
		"total":   created.TotalAmount,
	}).Info("sale created")

	return created, nil
}

// UpdateSale применяет изменения пользователя/даты и реконсилирует позиции
// с желаемым набором, затем возвращает перечитанный снимок продажи.
func (s *Service) UpdateSale(ctx context.Context, in UpdateSaleInput) (domain.Sale, error) {
	defer s.trackOperation("update_sale")()

	now := s.now()
	if err := domain.NewValidationError(domain.ValidateUpdateSale(in.UserID, in.Date, in.Products, now)); err != nil {
		return domain.Sale{}, err
	}

	sale, err := s.sales.GetByID(ctx, in.ID)
	if err != nil {
		return domain.Sale{}, err
	}

	sale.UserID = in.UserID
	sale.Date = in.Date
	sale.UpdatedAt = now

	sale.Reconcile(in.Products, now)
	sale.RecalculateTotal()

	if err := ctx.Err(); err != nil {
		return domain.Sale{}, err
	}

	if err := s.sales.Update(ctx, sale); err != nil {
		return domain.Sale{}, fmt.Errorf("update sale: %w", err)
	}

	// Перечитываем, чтобы вернуть состояние хранилища, а не локальную копию.
	refreshed, err := s.sales.GetByID(ctx, in.ID)
	if err != nil {
		return domain.Sale{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleUpdated()
	}
	s.logger.WithFields(log.Fields{
		"sale_id": refreshed.ID,
		"total":   refreshed.TotalAmount,
	}).Info("sale updated")

	return refreshed, nil
}

// CancelItem отменяет одну активную позицию продажи и публикует ItemCancelled.
func (s *Service) CancelItem(ctx context.Context, saleID, productID uuid.UUID) (CancelItemResult, error) {
	defer s.trackOperation("cancel_item")()

	if err := domain.NewValidationError(domain.ValidateCancelItem(saleID, productID)); err != nil {
		return CancelItemResult{}, err
	}

	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return CancelItemResult{}, err
	}

	cancelled, err := sale.CancelItem(productID, s.now())
	if err != nil {
		return CancelItemResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return CancelItemResult{}, err
	}

	if err := s.sales.Update(ctx, sale); err != nil {
		return CancelItemResult{}, fmt.Errorf("persist item cancellation: %w", err)
	}

	if err := s.publish(ctx, domain.ItemCancelled{Item: cancelled, Sale: sale}); err != nil {
		return CancelItemResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordItemCancelled()
	}
	s.logger.WithFields(log.Fields{
		"sale_id":    saleID,
		"product_id": productID,
	}).Info("sale item cancelled")

	return CancelItemResult{SaleID: saleID, ProductID: productID}, nil
}

// DeleteSale выполняет логическое удаление продажи и публикует SaleCancelled.
func (s *Service) DeleteSale(ctx context.Context, id uuid.UUID) error {
	defer s.trackOperation("delete_sale")()

	if id == uuid.Nil {
		return domain.NewValidationError([]domain.FieldError{{Field: "id", Message: "id is required"}})
	}

	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sale.IsCompleted() {
		return domain.ErrSaleCompleted
	}

	sale.MarkDeleted(s.now())

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.sales.Update(ctx, sale); err != nil {
		return fmt.Errorf("persist sale deletion: %w", err)
	}

	if err := s.publish(ctx, domain.SaleCancelled{Sale: sale}); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordSaleDeleted()
	}
	s.logger.WithField("sale_id", id).Info("sale deleted")

	return nil
}

// GetSale возвращает продажу по идентификатору.
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (domain.Sale, error) {
	defer s.trackOperation("get_sale")()

	if id == uuid.Nil {
		return domain.Sale{}, domain.NewValidationError([]domain.FieldError{{Field: "id", Message: "id is required"}})
	}
	return s.sales.GetByID(ctx, id)
}

// ListSales возвращает страницу продаж и общее количество.
func (s *Service) ListSales(ctx context.Context, in ListSalesInput) (ListSalesResult, error) {
	defer s.trackOperation("list_sales")()

	if err := domain.NewValidationError(domain.ValidateListQuery(in.Page, in.Size, in.Order)); err != nil {
		return ListSalesResult{}, err
	}

	// Строка сортировки уже проверена валидацией.
	order, err := domain.ParseSortOrder(in.Order)
	if err != nil {
		return ListSalesResult{}, domain.NewValidationError([]domain.FieldError{{Field: "order", Message: err.Error()}})
	}

	items, err := s.sales.List(ctx, in.Page, in.Size, order)
	if err != nil {
		return ListSalesResult{}, fmt.Errorf("list sales: %w", err)
	}
	total, err := s.sales.Total(ctx)
	if err != nil {
		return ListSalesResult{}, fmt.Errorf("count sales: %w", err)
	}

	return ListSalesResult{Sales: items, TotalItems: total}, nil
}

// publish отдаёт событие издателю и ведёт учёт. Ошибка возвращается как есть.
func (s *Service) publish(ctx context.Context, event domain.Event) error {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("event_type", event.EventType()).Error("publish event failed")
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}
	if s.metrics != nil {
		s.metrics.RecordEventPublished(event.EventType())
	}
	return nil
}

// trackOperation возвращает функцию завершения для учёта времени операции.
func (s *Service) trackOperation(operation string) func() {
	if s.metrics == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		s.metrics.RecordOperationDuration(operation, time.Since(start))
	}
}
