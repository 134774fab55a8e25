package dto

import "time"

type TossPaymentPayload struct {
	PaymentKey string `json:"payment_key"`
	OrderID    string `json:"order_id"`
	Amount     int    `json:"amount"`
}

type CreateOrderRequest struct {
	ProductID      int64               `json:"product_id"`
	Price          int                 `json:"price"`
	DiscountAmount int                 `json:"discount_amount"`
	TotalAmount    int                 `json:"total_amount"`
	CouponID       *int64              `json:"coupon_id,omitempty"`
	Toss           *TossPaymentPayload `json:"toss,omitempty"`
}

type OrderResponse struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	Price          int       `json:"price"`
	DiscountAmount int       `json:"discount_amount"`
	TotalAmount    int       `json:"total_amount"`
	CouponID       *int64    `json:"coupon_id,omitempty"`
	TossMethod     *string   `json:"toss_method,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	TicketCount int    `json:"ticket_count"`
}

type NewOrderIDResponse struct {
	OrderID string `json:"order_id"`
}
