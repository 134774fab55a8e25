package model

import "time"

type Order struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	ProductID      int64      `json:"product_id"`
	Price          int        `json:"price"`
	DiscountAmount int        `json:"discount_amount"`
	TotalAmount    int        `json:"total_amount"`
	CouponID       *int64     `json:"coupon_id,omitempty"`
	TossPaymentKey *string    `json:"toss_payment_key,omitempty"`
	TossOrderID    *string    `json:"toss_order_id,omitempty"`
	TossMethod     *string    `json:"toss_method,omitempty"`
	TossOrderName  *string    `json:"toss_order_name,omitempty"`
	TossAmount     *int       `json:"toss_amount,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}
