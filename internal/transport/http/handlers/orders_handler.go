package handlers

import (
	"errors"
	"net/http"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
	ordersvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/orders"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/dto"
	httperrors "github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/errors"
)

type OrdersHandler struct {
	orders *ordersvc.Service
}

func NewOrdersHandler(orders *ordersvc.Service) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

func (h *OrdersHandler) Products(w http.ResponseWriter, r *http.Request) {
	products := h.orders.Products()
	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, dto.ProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			TicketCount: p.TicketCount,
		})
	}
	httperrors.Write(w, http.StatusOK, items)
}

// NewOrderID hands the client the id it must register with the payment
// widget before confirmation.
func (h *OrdersHandler) NewOrderID(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.NewOrderIDResponse{OrderID: ordersvc.NewOrderID()})
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	input := ordersvc.CreateOrderInput{
		ProductID:      req.ProductID,
		Price:          req.Price,
		DiscountAmount: req.DiscountAmount,
		TotalAmount:    req.TotalAmount,
		CouponID:       req.CouponID,
	}
	if req.Toss != nil {
		input.Toss = &ordersvc.TossPayload{
			PaymentKey: req.Toss.PaymentKey,
			OrderID:    req.Toss.OrderID,
			Amount:     req.Toss.Amount,
		}
	}

	order, err := h.orders.CreateOrder(r.Context(), identity.UserID, input)
	if err != nil {
		handleOrdersError(w, err, "failed to create order")
		return
	}

	httperrors.Write(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	orders, err := h.orders.ListByUserID(r.Context(), identity.UserID)
	if err != nil {
		handleOrdersError(w, err, "failed to list orders")
		return
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}
	httperrors.Write(w, http.StatusOK, items)
}

func handleOrdersError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ordersvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	case errors.Is(err, ordersvc.ErrProductNotFound):
		writeNotFound(w, "PRODUCT_NOT_FOUND", "product not found")
	case errors.Is(err, ordersvc.ErrCouponNotFound):
		writeNotFound(w, "COUPON_NOT_FOUND", "coupon not found")
	case errors.Is(err, ordersvc.ErrCouponTypeNotFound):
		writeNotFound(w, "COUPON_TYPE_NOT_FOUND", "coupon type not found")
	case errors.Is(err, ordersvc.ErrCouponNotOwned),
		errors.Is(err, ordersvc.ErrCouponAlreadyUsed),
		errors.Is(err, ordersvc.ErrCouponExpired),
		errors.Is(err, ordersvc.ErrCouponNotApplicable):
		writeForbidden(w, "COUPON_REJECTED", "coupon cannot be used for this order")
	case errors.Is(err, ordersvc.ErrAmountMismatch):
		writeForbidden(w, "AMOUNT_MISMATCH", "order amount does not match the catalog")
	case errors.Is(err, ordersvc.ErrPaymentRejected), errors.Is(err, ordersvc.ErrPaymentIncomplete):
		writeBadRequest(w, "PAYMENT_FAILED", "payment confirmation failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:             order.ID,
		ProductID:      order.ProductID,
		Price:          order.Price,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
		CouponID:       order.CouponID,
		TossMethod:     order.TossMethod,
		CreatedAt:      order.CreatedAt,
	}
}
