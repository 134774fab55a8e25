package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/config"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/infra/toss"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrProductNotFound     = errors.New("product not found")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponTypeNotFound  = errors.New("coupon type not found")
	ErrCouponNotOwned      = errors.New("coupon belongs to another user")
	ErrCouponAlreadyUsed   = errors.New("coupon already used")
	ErrCouponExpired       = errors.New("coupon expired")
	ErrCouponNotApplicable = errors.New("coupon not applicable to product")
	ErrAmountMismatch      = errors.New("order amount mismatch")
	ErrPaymentRejected     = errors.New("payment confirmation rejected")
	ErrPaymentIncomplete   = errors.New("payment confirmation incomplete")
)

type CouponStore interface {
	GetByID(ctx context.Context, couponID int64) (model.Coupon, error)
	MarkUsed(ctx context.Context, tx pgx.Tx, couponID int64, now time.Time) error
}

type OrderStore interface {
	Create(ctx context.Context, tx pgx.Tx, params pgrepo.CreateOrderParams) (model.Order, error)
	GetByCouponID(ctx context.Context, couponID int64) (*model.Order, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
}

type TicketMinter interface {
	MintForOrder(ctx context.Context, tx pgx.Tx, userID, orderID int64, count int) error
}

type PaymentConfirmer interface {
	Confirm(ctx context.Context, paymentKey, orderID string, amount int) (toss.ConfirmResult, error)
}

type Service struct {
	coupons  CouponStore
	orders   OrderStore
	tickets  TicketMinter
	payments PaymentConfirmer
	catalog  config.CatalogConfig
	location *time.Location
	now      func() time.Time
	withTx   func(context.Context, func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool     *pgxpool.Pool
	Coupons  CouponStore
	Orders   OrderStore
	Tickets  TicketMinter
	Payments PaymentConfirmer
	Catalog  config.CatalogConfig
	Location *time.Location
}

func NewService(deps Dependencies) *Service {
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	return &Service{
		coupons:  deps.Coupons,
		orders:   deps.Orders,
		tickets:  deps.Tickets,
		payments: deps.Payments,
		catalog:  deps.Catalog,
		location: location,
		now:      time.Now,
		withTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

// VerifyCoupon guards an order against coupon abuse. Double consumption is
// checked twice on purpose: an order row referencing the coupon and the
// coupon's own used_at can each independently indicate prior use.
func (s *Service) VerifyCoupon(ctx context.Context, coupon model.Coupon, userID, productID int64) error {
	if coupon.UserID != userID {
		return ErrCouponNotOwned
	}

	order, err := s.orders.GetByCouponID(ctx, coupon.ID)
	if err != nil {
		return fmt.Errorf("lookup order by coupon: %w", err)
	}
	if order != nil || coupon.UsedAt != nil {
		return ErrCouponAlreadyUsed
	}

	if coupon.ExpiresAt != nil {
		// Expiry is a whole-day comparison in the service timezone.
		today := s.today()
		if coupon.ExpiresAt.In(s.location).Before(today) {
			return ErrCouponExpired
		}
	}

	couponType, ok := s.catalog.CouponTypeByID(coupon.TypeID)
	if !ok {
		return ErrCouponTypeNotFound
	}
	if !couponType.AppliesTo(productID) {
		return ErrCouponNotApplicable
	}

	return nil
}

// VerifyOrderAmount recomputes every money field from the catalog and the
// coupon type; submitted values are never trusted. The externally confirmed
// payment amount, when present, is the anchor all derived values must
// reconcile against.
func (s *Service) VerifyOrderAmount(productID int64, price, discountAmount, totalAmount int, tossAmount *int, coupon *model.Coupon) error {
	product, ok := s.catalog.ProductByID(productID)
	if !ok {
		return ErrProductNotFound
	}
	if price != product.Price {
		return ErrAmountMismatch
	}

	if coupon != nil {
		couponType, ok := s.catalog.CouponTypeByID(coupon.TypeID)
		if !ok {
			return ErrCouponTypeNotFound
		}

		finalDiscount := product.Price * couponType.DiscountRate / 100
		finalTotal := product.Price - finalDiscount

		if discountAmount != finalDiscount || totalAmount != finalTotal {
			return ErrAmountMismatch
		}
		if tossAmount != nil && *tossAmount != finalTotal {
			return ErrAmountMismatch
		}
		return nil
	}

	if tossAmount != nil && *tossAmount != product.Price {
		return ErrAmountMismatch
	}
	return nil
}

type TossPayload struct {
	PaymentKey string
	OrderID    string
	Amount     int
}

type CreateOrderInput struct {
	ProductID      int64
	Price          int
	DiscountAmount int
	TotalAmount    int
	CouponID       *int64
	Toss           *TossPayload
}

// CreateOrder validates the purchase, confirms the payment with the
// provider, then persists the order, consumes the coupon and mints the
// product's tickets in one transaction.
func (s *Service) CreateOrder(ctx context.Context, userID int64, input CreateOrderInput) (model.Order, error) {
	if userID <= 0 || input.ProductID <= 0 {
		return model.Order{}, ErrValidation
	}
	// A free order is only possible through a 100% coupon.
	if input.Toss == nil && input.TotalAmount > 0 {
		return model.Order{}, ErrValidation
	}

	var coupon *model.Coupon
	if input.CouponID != nil {
		found, err := s.coupons.GetByID(ctx, *input.CouponID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrCouponNotFound) {
				return model.Order{}, ErrCouponNotFound
			}
			return model.Order{}, fmt.Errorf("get coupon: %w", err)
		}
		if err := s.VerifyCoupon(ctx, found, userID, input.ProductID); err != nil {
			return model.Order{}, err
		}
		coupon = &found
	}

	var tossAmount *int
	if input.Toss != nil {
		tossAmount = &input.Toss.Amount
	}
	if err := s.VerifyOrderAmount(input.ProductID, input.Price, input.DiscountAmount, input.TotalAmount, tossAmount, coupon); err != nil {
		return model.Order{}, err
	}

	params := pgrepo.CreateOrderParams{
		UserID:         userID,
		ProductID:      input.ProductID,
		Price:          input.Price,
		DiscountAmount: input.DiscountAmount,
		TotalAmount:    input.TotalAmount,
		CouponID:       input.CouponID,
	}

	if input.Toss != nil {
		confirmed, err := s.payments.Confirm(ctx, input.Toss.PaymentKey, input.Toss.OrderID, input.Toss.Amount)
		if err != nil {
			var providerErr *toss.ProviderError
			if errors.As(err, &providerErr) {
				return model.Order{}, fmt.Errorf("%w: %s", ErrPaymentRejected, providerErr.Code)
			}
			return model.Order{}, fmt.Errorf("confirm payment: %w", err)
		}
		if confirmed.TotalAmount <= 0 {
			return model.Order{}, ErrPaymentIncomplete
		}
		params.TossPaymentKey = &confirmed.PaymentKey
		params.TossOrderID = &confirmed.OrderID
		params.TossMethod = &confirmed.Method
		params.TossOrderName = &confirmed.OrderName
		params.TossAmount = &confirmed.TotalAmount
	}

	product, ok := s.catalog.ProductByID(input.ProductID)
	if !ok {
		return model.Order{}, ErrProductNotFound
	}

	var order model.Order
	err := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		created, err := s.orders.Create(txCtx, tx, params)
		if err != nil {
			return err
		}
		order = created

		if coupon != nil {
			if err := s.coupons.MarkUsed(txCtx, tx, coupon.ID, s.now().UTC()); err != nil {
				return err
			}
		}

		return s.tickets.MintForOrder(txCtx, tx, userID, created.ID, product.TicketCount)
	})
	if err != nil {
		return model.Order{}, err
	}

	return order, nil
}

func (s *Service) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	orders, err := s.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Products exposes the immutable product catalog for the purchase page.
func (s *Service) Products() []config.ProductConfig {
	return s.catalog.Products
}

// NewOrderID mints the order id passed to the payment provider.
func NewOrderID() string {
	return uuid.NewString()
}

func (s *Service) today() time.Time {
	local := s.now().In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
}
