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

type CouponRepo struct {
	pool *pgxpool.Pool
}

func NewCouponRepo(pool *pgxpool.Pool) *CouponRepo {
	return &CouponRepo{pool: pool}
}

const couponColumns = `id, user_id, type_id, expires_at, used_at, created_at`

func scanCoupon(row pgx.Row) (model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.UserID, &c.TypeID, &c.ExpiresAt, &c.UsedAt, &c.CreatedAt)
	return c, err
}

func (r *CouponRepo) Create(ctx context.Context, userID, typeID int64, expiresAt *time.Time) (model.Coupon, error) {
	if userID <= 0 || typeID <= 0 {
		return model.Coupon{}, fmt.Errorf("invalid coupon payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO coupons (user_id, type_id, expires_at, created_at)
VALUES ($1, $2, $3, NOW())
RETURNING `+couponColumns+`
`, userID, typeID, expiresAt)

	coupon, err := scanCoupon(row)
	if err != nil {
		return model.Coupon{}, fmt.Errorf("create coupon: %w", err)
	}
	return coupon, nil
}

func (r *CouponRepo) GetByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+couponColumns+`
FROM coupons
WHERE id = $1
`, couponID)

	coupon, err := scanCoupon(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Coupon{}, ErrCouponNotFound
		}
		return model.Coupon{}, fmt.Errorf("get coupon by id: %w", err)
	}
	return coupon, nil
}

// ListUsableByUserID returns unused coupons that have not expired yet.
func (r *CouponRepo) ListUsableByUserID(ctx context.Context, userID int64, today time.Time) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+couponColumns+`
FROM coupons
WHERE user_id = $1
	AND used_at IS NULL
	AND (expires_at IS NULL OR expires_at >= $2)
ORDER BY created_at DESC, id DESC
`, userID, today)
	if err != nil {
		return nil, fmt.Errorf("list usable coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate coupons: %w", rows.Err())
	}

	return coupons, nil
}

func (r *CouponRepo) CountUsableByUserID(ctx context.Context, userID int64, today time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM coupons
WHERE user_id = $1
	AND used_at IS NULL
	AND (expires_at IS NULL OR expires_at >= $2)
`, userID, today).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usable coupons: %w", err)
	}
	return count, nil
}

func (r *CouponRepo) CountByTypeAndUserID(ctx context.Context, typeID, userID int64, today time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM coupons
WHERE user_id = $1
	AND type_id = $2
	AND used_at IS NULL
	AND (expires_at IS NULL OR expires_at >= $3)
`, userID, typeID, today).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count coupons by type: %w", err)
	}
	return count, nil
}

// MarkUsed sets used_at once; a coupon already consumed is not touched.
func (r *CouponRepo) MarkUsed(ctx context.Context, tx pgx.Tx, couponID int64, now time.Time) error {
	tag, err := tx.Exec(ctx, `
UPDATE coupons
SET used_at = $2
WHERE id = $1 AND used_at IS NULL
`, couponID, now)
	if err != nil {
		return fmt.Errorf("mark coupon used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCouponNotFound
	}
	return nil
}
