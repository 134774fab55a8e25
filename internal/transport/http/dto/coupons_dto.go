package dto

import "time"

type CouponResponse struct {
	ID           int64      `json:"id"`
	TypeID       int64      `json:"type_id"`
	Name         string     `json:"name"`
	DiscountRate int        `json:"discount_rate"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type GrantCouponRequest struct {
	UserID    int64      `json:"user_id"`
	TypeID    int64      `json:"type_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type GrantCouponResponse struct {
	CouponID int64 `json:"coupon_id"`
}
