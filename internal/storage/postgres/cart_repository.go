package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, date
		FROM carts
		WHERE id = $1
	`, id).Scan(&cart.ID, &cart.UserID, &cart.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price, status
		FROM cart_products
		WHERE cart_id = $1
		ORDER BY product_id ASC
	`, id)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			product domain.CartProduct
			status  string
		)
		if err := rows.Scan(&product.ProductID, &product.Quantity, &product.UnitPrice, &status); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart product: %w", err)
		}
		product.Status = domain.Status(status)
		cart.Products = append(cart.Products, product)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart products: %w", err)
	}

	return cart, nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
