package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
	invitesvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/invitations"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/dto"
	httperrors "github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/errors"
)

type InvitationsHandler struct {
	invitations *invitesvc.Service
}

func NewInvitationsHandler(invitations *invitesvc.Service) *InvitationsHandler {
	return &InvitationsHandler{invitations: invitations}
}

func (h *InvitationsHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.RedeemInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	invitation, err := h.invitations.Redeem(r.Context(), identity.UserID, req.ReferralCode)
	if err != nil {
		handleInvitationsError(w, err, "failed to redeem referral code")
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.RedeemInvitationResponse{InvitationID: invitation.ID})
}

func (h *InvitationsHandler) Count(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	count, err := h.invitations.CountByInviter(r.Context(), identity.UserID)
	if err != nil {
		handleInvitationsError(w, err, "failed to count invitations")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CountResponse{Count: count})
}

func handleInvitationsError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, invitesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	case errors.Is(err, invitesvc.ErrCodeNotFound):
		writeNotFound(w, "REFERRAL_CODE_NOT_FOUND", "referral code not found")
	case errors.Is(err, invitesvc.ErrSelfInvitation):
		writeBadRequest(w, "SELF_INVITATION", "cannot redeem your own referral code")
	case errors.Is(err, invitesvc.ErrAlreadyRedeemed):
		writeBadRequest(w, "ALREADY_REDEEMED", "referral code already redeemed")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}
