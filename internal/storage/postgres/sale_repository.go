package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// Колонки сортировки списка продаж по доменным именам полей.
var saleSortColumns = map[string]string{
	"id":     "id",
	"userId": "user_id",
	"date":   "date",
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository создаёт PostgreSQL-реализацию SaleRepository.
func NewSaleRepository(store *Store) domain.SaleRepository {
	return &saleRepository{db: store.DB()}
}

func (r *saleRepository) Create(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}

	// Номер продажи выдаёт последовательность базы.
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sales (
			id, user_id, branch, date, status, total_amount, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING number
	`,
		sale.ID, sale.UserID, sale.Branch, sale.Date, string(sale.Status),
		sale.TotalAmount, sale.CreatedAt, nullTime(sale.UpdatedAt),
	).Scan(&sale.Number)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	for i := range sale.Items {
		if err = insertItemTx(ctx, tx, sale.ID, sale.Items[i]); err != nil {
			return domain.Sale{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return domain.Sale{}, fmt.Errorf("commit create sale: %w", err)
	}

	return sale, nil
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sale, err := r.scanSale(r.db.QueryRowContext(ctx, `
		SELECT id, number, user_id, branch, date, status, total_amount, created_at, updated_at, deleted_at
		FROM sales
		WHERE id = $1 AND status <> $2
	`, id, string(domain.StatusDeleted)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sale{}, domain.ErrSaleNotFound
		}
		return domain.Sale{}, fmt.Errorf("select sale: %w", err)
	}

	items, err := r.loadItems(ctx, sale.ID)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.Items = items

	return sale, nil
}

func (r *saleRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	sale, err := r.scanSale(r.db.QueryRowContext(ctx, `
		SELECT id, number, user_id, branch, date, status, total_amount, created_at, updated_at, deleted_at
		FROM sales
		WHERE user_id = $1 AND status = $2
		LIMIT 1
	`, userID, string(domain.StatusActive)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sale{}, domain.ErrSaleNotFound
		}
		return domain.Sale{}, fmt.Errorf("select active sale: %w", err)
	}

	items, err := r.loadItems(ctx, sale.ID)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.Items = items

	return sale, nil
}

// Update перезаписывает продажу и её позиции. Версионирования нет:
// последняя запись побеждает. Позиции, отсутствующие во входящем наборе,
// не трогаются, поэтому история удалённых позиций сохраняется.
func (r *saleRepository) Update(ctx context.Context, sale domain.Sale) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE sales
		SET user_id = $1,
		    branch = $2,
		    date = $3,
		    status = $4,
		    total_amount = $5,
		    updated_at = $6,
		    deleted_at = $7
		WHERE id = $8
	`,
		sale.UserID, sale.Branch, sale.Date, string(sale.Status),
		sale.TotalAmount, nullTime(sale.UpdatedAt), nullTime(sale.DeletedAt),
		sale.ID,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrSaleNotFound
	}

	for i := range sale.Items {
		if err = upsertItemTx(ctx, tx, sale.ID, sale.Items[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update sale: %w", err)
	}

	return nil
}

func (r *saleRepository) List(ctx context.Context, page, size int, order []domain.SortClause) ([]domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT id, number, user_id, branch, date, status, total_amount, created_at, updated_at, deleted_at
		FROM sales
		WHERE status <> $1
		ORDER BY %s
		OFFSET $2 LIMIT $3
	`, orderByClause(order))

	offset := size * (page - 1)
	rows, err := r.db.QueryContext(ctx, query, string(domain.StatusDeleted), offset, size)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		sale, err := r.scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale rows: %w", err)
	}

	for i := range sales {
		items, err := r.loadItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}

	return sales, nil
}

func (r *saleRepository) Total(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var total int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sales WHERE status <> $1
	`, string(domain.StatusDeleted)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *saleRepository) scanSale(row rowScanner) (domain.Sale, error) {
	var (
		sale      domain.Sale
		status    string
		updatedAt sql.NullTime
		deletedAt sql.NullTime
	)
	if err := row.Scan(
		&sale.ID, &sale.Number, &sale.UserID, &sale.Branch, &sale.Date,
		&status, &sale.TotalAmount, &sale.CreatedAt, &updatedAt, &deletedAt,
	); err != nil {
		return domain.Sale{}, err
	}
	sale.Status = domain.Status(status)
	sale.UpdatedAt = updatedAt.Time
	sale.DeletedAt = deletedAt.Time
	return sale, nil
}

func (r *saleRepository) loadItems(ctx context.Context, saleID uuid.UUID) ([]domain.SaleItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, unit_price, discount, total_amount, status, created_at, updated_at, deleted_at
		FROM sale_products
		WHERE sale_id = $1 AND status <> $2
		ORDER BY created_at ASC, id ASC
	`, saleID, string(domain.StatusDeleted))
	if err != nil {
		return nil, fmt.Errorf("load sale products: %w", err)
	}
	defer rows.Close()

	items := make([]domain.SaleItem, 0)
	for rows.Next() {
		var (
			item      domain.SaleItem
			status    string
			updatedAt sql.NullTime
			deletedAt sql.NullTime
		)
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice,
			&item.Discount, &item.TotalAmount, &status, &item.CreatedAt,
			&updatedAt, &deletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale product: %w", err)
		}
		item.SaleID = saleID
		item.Status = domain.Status(status)
		item.UpdatedAt = updatedAt.Time
		item.DeletedAt = deletedAt.Time
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale products: %w", err)
	}

	return items, nil
}

func insertItemTx(ctx context.Context, tx *sql.Tx, saleID uuid.UUID, item domain.SaleItem) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sale_products (
			id, sale_id, product_id, quantity, unit_price, discount, total_amount, status, created_at, updated_at, deleted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		item.ID, saleID, item.ProductID, item.Quantity, item.UnitPrice,
		item.Discount, item.TotalAmount, string(item.Status), item.CreatedAt,
		nullTime(item.UpdatedAt), nullTime(item.DeletedAt),
	); err != nil {
		return fmt.Errorf("insert sale product: %w", err)
	}
	return nil
}

func upsertItemTx(ctx context.Context, tx *sql.Tx, saleID uuid.UUID, item domain.SaleItem) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sale_products (
			id, sale_id, product_id, quantity, unit_price, discount, total_amount, status, created_at, updated_at, deleted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    unit_price = EXCLUDED.unit_price,
		    discount = EXCLUDED.discount,
		    total_amount = EXCLUDED.total_amount,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at,
		    deleted_at = EXCLUDED.deleted_at
	`,
		item.ID, saleID, item.ProductID, item.Quantity, item.UnitPrice,
		item.Discount, item.TotalAmount, string(item.Status), item.CreatedAt,
		nullTime(item.UpdatedAt), nullTime(item.DeletedAt),
	); err != nil {
		return fmt.Errorf("upsert sale product: %w", err)
	}
	return nil
}

// orderByClause строит ORDER BY из допустимых полей сортировки.
// Имена полей уже прошли через доменный allow-list, но на всякий случай
// неизвестные поля здесь пропускаются.
func orderByClause(order []domain.SortClause) string {
	parts := make([]string, 0, len(order)+1)
	for _, clause := range order {
		column, ok := saleSortColumns[clause.Field]
		if !ok {
			continue
		}
		direction := "ASC"
		if clause.Desc {
			direction = "DESC"
		}
		parts = append(parts, column+" "+direction)
	}
	parts = append(parts, "number ASC")
	return strings.Join(parts, ", ")
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

var _ domain.SaleRepository = (*saleRepository)(nil)
