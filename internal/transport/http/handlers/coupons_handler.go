package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
	couponsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/coupons"
	ticketsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/tickets"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/dto"
	httperrors "github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/errors"
)

type CouponsHandler struct {
	coupons *couponsvc.Service
	tickets *ticketsvc.Service
}

func NewCouponsHandler(coupons *couponsvc.Service, tickets *ticketsvc.Service) *CouponsHandler {
	return &CouponsHandler{coupons: coupons, tickets: tickets}
}

func (h *CouponsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	coupons, err := h.coupons.ListByUserID(r.Context(), identity.UserID)
	if err != nil {
		handleCouponsError(w, err, "failed to list coupons")
		return
	}

	items := make([]dto.CouponResponse, 0, len(coupons))
	for _, coupon := range coupons {
		items = append(items, dto.CouponResponse{
			ID:           coupon.ID,
			TypeID:       coupon.TypeID,
			Name:         coupon.Name,
			DiscountRate: coupon.DiscountRate,
			ExpiresAt:    coupon.ExpiresAt,
		})
	}
	httperrors.Write(w, http.StatusOK, items)
}

func (h *CouponsHandler) Count(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	count, err := h.coupons.CountByUserID(r.Context(), identity.UserID)
	if err != nil {
		handleCouponsError(w, err, "failed to count coupons")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

func (h *CouponsHandler) TicketCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	count, err := h.tickets.CountByUserID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, ticketsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to count tickets")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

func handleCouponsError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, couponsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	case errors.Is(err, couponsvc.ErrCouponNotFound):
		writeNotFound(w, "COUPON_NOT_FOUND", "coupon not found")
	case errors.Is(err, couponsvc.ErrUnknownCouponType):
		writeBadRequest(w, "UNKNOWN_COUPON_TYPE", "unknown coupon type")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}
