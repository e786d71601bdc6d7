package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

// CartRepository — in-memory источник корзин для разработки и тестов.
type CartRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Cart
}

// NewCartRepository возвращает in-memory репозиторий корзин.
func NewCartRepository() *CartRepository {
	return &CartRepository{
		items: make(map[uuid.UUID]domain.Cart),
	}
}

// Put сохраняет корзину (используется при наполнении тестовых данных).
func (r *CartRepository) Put(cart domain.Cart) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cart
	stored.Products = make([]domain.CartProduct, len(cart.Products))
	copy(stored.Products, cart.Products)
	r.items[cart.ID] = stored
}

// GetByID возвращает корзину или ErrCartNotFound.
func (r *CartRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.items[id]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	out := cart
	out.Products = make([]domain.CartProduct, len(cart.Products))
	copy(out.Products, cart.Products)
	return out, nil
}

var _ domain.CartRepository = (*CartRepository)(nil)
