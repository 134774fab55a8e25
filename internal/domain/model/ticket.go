package model

import "time"

// Ticket is a consumable matching credit. A ticket spent on accepting a
// matching is refunded when the partner team refuses.
type Ticket struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	OrderID    *int64     `json:"order_id,omitempty"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
