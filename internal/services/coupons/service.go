package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/config"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrUnknownCouponType = errors.New("unknown coupon type")
)

type CouponStore interface {
	Create(ctx context.Context, userID, typeID int64, expiresAt *time.Time) (model.Coupon, error)
	GetByID(ctx context.Context, couponID int64) (model.Coupon, error)
	ListUsableByUserID(ctx context.Context, userID int64, today time.Time) ([]model.Coupon, error)
	CountUsableByUserID(ctx context.Context, userID int64, today time.Time) (int, error)
	CountByTypeAndUserID(ctx context.Context, typeID, userID int64, today time.Time) (int, error)
}

type Service struct {
	coupons  CouponStore
	catalog  config.CatalogConfig
	location *time.Location
	now      func() time.Time
}

func NewService(coupons CouponStore, catalog config.CatalogConfig, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		coupons:  coupons,
		catalog:  catalog,
		location: location,
		now:      time.Now,
	}
}

type UserCoupon struct {
	ID           int64
	TypeID       int64
	Name         string
	DiscountRate int
	ExpiresAt    *time.Time
}

// Grant issues a coupon of a catalog type to a user.
func (s *Service) Grant(ctx context.Context, userID, typeID int64, expiresAt *time.Time) (model.Coupon, error) {
	if userID <= 0 {
		return model.Coupon{}, ErrValidation
	}
	if _, ok := s.catalog.CouponTypeByID(typeID); !ok {
		return model.Coupon{}, ErrUnknownCouponType
	}

	coupon, err := s.coupons.Create(ctx, userID, typeID, expiresAt)
	if err != nil {
		return model.Coupon{}, fmt.Errorf("grant coupon: %w", err)
	}
	return coupon, nil
}

func (s *Service) GetByID(ctx context.Context, couponID int64) (model.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCouponNotFound) {
			return model.Coupon{}, ErrCouponNotFound
		}
		return model.Coupon{}, fmt.Errorf("get coupon: %w", err)
	}
	return coupon, nil
}

func (s *Service) ListByUserID(ctx context.Context, userID int64) ([]UserCoupon, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}

	coupons, err := s.coupons.ListUsableByUserID(ctx, userID, s.today())
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}

	items := make([]UserCoupon, 0, len(coupons))
	for _, coupon := range coupons {
		couponType, ok := s.catalog.CouponTypeByID(coupon.TypeID)
		if !ok {
			// Type removed from the catalog; hide the coupon instead of
			// surfacing a broken entry.
			continue
		}
		items = append(items, UserCoupon{
			ID:           coupon.ID,
			TypeID:       coupon.TypeID,
			Name:         couponType.Name,
			DiscountRate: couponType.DiscountRate,
			ExpiresAt:    coupon.ExpiresAt,
		})
	}
	return items, nil
}

func (s *Service) CountByUserID(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	count, err := s.coupons.CountUsableByUserID(ctx, userID, s.today())
	if err != nil {
		return 0, fmt.Errorf("count coupons: %w", err)
	}
	return count, nil
}

func (s *Service) CountByTypeAndUserID(ctx context.Context, typeID, userID int64) (int, error) {
	if userID <= 0 || typeID <= 0 {
		return 0, ErrValidation
	}
	count, err := s.coupons.CountByTypeAndUserID(ctx, typeID, userID, s.today())
	if err != nil {
		return 0, fmt.Errorf("count coupons by type: %w", err)
	}
	return count, nil
}

// today is midnight in the service timezone; coupon expiry compares whole
// days, not instants.
func (s *Service) today() time.Time {
	local := s.now().In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
}
