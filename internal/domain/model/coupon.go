package model

import "time"

// Coupon belongs to one user. Once UsedAt is set the coupon is permanently
// consumed; an order row referencing the coupon is an equivalent signal.
type Coupon struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	TypeID    int64      `json:"type_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
