package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
	usersvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/users"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/dto"
	httperrors "github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/errors"
)

type UsersHandler struct {
	users *usersvc.Service
}

func NewUsersHandler(users *usersvc.Service) *UsersHandler {
	return &UsersHandler{users: users}
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		handleUsersError(w, err, "failed to load profile")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UserResponse{
		ID:         user.ID,
		Nickname:   user.Nickname,
		Gender:     user.Gender,
		AgeRange:   user.AgeRange,
		Phone:      user.Phone,
		ReferralID: user.ReferralID,
		Role:       user.Role,
		CreatedAt:  user.CreatedAt,
	})
}

// MatchingStatus reports the caller's state machine position. Users without
// a team get a null status rather than an error.
func (h *UsersHandler) MatchingStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	status, matching, err := h.users.MatchingStatus(r.Context(), identity.UserID)
	if err != nil {
		handleUsersError(w, err, "failed to resolve matching status")
		return
	}

	var resp dto.MatchingStatusResponse
	if status != "" {
		value := string(status)
		resp.MatchingStatus = &value
	}
	if matching != nil {
		resp.MatchingID = &matching.ID
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *UsersHandler) Counts(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	counts, err := h.users.Counts(r.Context(), identity.UserID)
	if err != nil {
		handleUsersError(w, err, "failed to load counters")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UserCountsResponse{
		Tickets:     counts.Tickets,
		Coupons:     counts.Coupons,
		Invitations: counts.Invitations,
	})
}

func (h *UsersHandler) UpdatePhone(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.UpdatePhoneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.users.UpdatePhone(r.Context(), identity.UserID, req.Phone); err != nil {
		handleUsersError(w, err, "failed to update phone")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func (h *UsersHandler) UpdateGender(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.UpdateGenderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.users.UpdateGender(r.Context(), identity.UserID, req.Gender); err != nil {
		handleUsersError(w, err, "failed to update gender")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func (h *UsersHandler) UpdateAgeRange(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.UpdateAgeRangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.users.UpdateAgeRange(r.Context(), identity.UserID, req.AgeRange); err != nil {
		handleUsersError(w, err, "failed to update age range")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.users.Delete(r.Context(), identity.UserID); err != nil {
		handleUsersError(w, err, "failed to delete account")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func handleUsersError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usersvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	case errors.Is(err, usersvc.ErrUserNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}
