package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, user_id, product_id, price, discount_amount, total_amount, coupon_id,
	toss_payment_key, toss_order_id, toss_method, toss_order_name, toss_amount, created_at, deleted_at`

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.ProductID,
		&o.Price,
		&o.DiscountAmount,
		&o.TotalAmount,
		&o.CouponID,
		&o.TossPaymentKey,
		&o.TossOrderID,
		&o.TossMethod,
		&o.TossOrderName,
		&o.TossAmount,
		&o.CreatedAt,
		&o.DeletedAt,
	)
	return o, err
}

type CreateOrderParams struct {
	UserID         int64
	ProductID      int64
	Price          int
	DiscountAmount int
	TotalAmount    int
	CouponID       *int64
	TossPaymentKey *string
	TossOrderID    *string
	TossMethod     *string
	TossOrderName  *string
	TossAmount     *int
}

func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, params CreateOrderParams) (model.Order, error) {
	if params.UserID <= 0 || params.ProductID <= 0 {
		return model.Order{}, fmt.Errorf("invalid order payload")
	}

	row := tx.QueryRow(ctx, `
INSERT INTO orders (
	user_id, product_id, price, discount_amount, total_amount, coupon_id,
	toss_payment_key, toss_order_id, toss_method, toss_order_name, toss_amount, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
RETURNING `+orderColumns+`
`,
		params.UserID,
		params.ProductID,
		params.Price,
		params.DiscountAmount,
		params.TotalAmount,
		params.CouponID,
		params.TossPaymentKey,
		params.TossOrderID,
		params.TossMethod,
		params.TossOrderName,
		params.TossAmount,
	)

	order, err := scanOrder(row)
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID int64) (model.Order, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE id = $1 AND deleted_at IS NULL
`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, ErrOrderNotFound
		}
		return model.Order{}, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// GetByCouponID returns the order that consumed a coupon, nil when none.
// Used as the back-reference side of the double-consumption guard.
func (r *OrderRepo) GetByCouponID(ctx context.Context, couponID int64) (*model.Order, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE coupon_id = $1
LIMIT 1
`, couponID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by coupon id: %w", err)
	}
	return &order, nil
}

func (r *OrderRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate orders: %w", rows.Err())
	}

	return orders, nil
}

func (r *OrderRepo) SoftDeleteByUserID(ctx context.Context, userID int64, now time.Time) error {
	if _, err := r.pool.Exec(ctx, `
UPDATE orders SET deleted_at = $2 WHERE user_id = $1 AND deleted_at IS NULL
`, userID, now); err != nil {
		return fmt.Errorf("soft delete orders by user id: %w", err)
	}
	return nil
}
