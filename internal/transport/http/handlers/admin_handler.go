package handlers

import (
	"context"
	"net/http"

	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
	couponsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/coupons"
	matchsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/matchings"
	teamsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/teams"
	usersvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/users"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/dto"
	httperrors "github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/errors"
)

type SucceededLister interface {
	ListSucceeded(ctx context.Context) ([]pgrepo.SucceededMatchingRecord, error)
}

// AdminHandler backs the operator dashboard. Role checks happen in the
// middleware; handlers here assume an admin identity.
type AdminHandler struct {
	users     *usersvc.Service
	teams     *teamsvc.Service
	matchings *matchsvc.Service
	coupons   *couponsvc.Service
	succeeded SucceededLister
}

func NewAdminHandler(users *usersvc.Service, teams *teamsvc.Service, matchings *matchsvc.Service, coupons *couponsvc.Service, succeeded SucceededLister) *AdminHandler {
	return &AdminHandler{
		users:     users,
		teams:     teams,
		matchings: matchings,
		coupons:   coupons,
		succeeded: succeeded,
	}
}

// CreateMatching pairs two teams for the current round.
func (h *AdminHandler) CreateMatching(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	matching, err := h.matchings.CreatePairing(r.Context(), req.MaleTeamID, req.FemaleTeamID)
	if err != nil {
		handleMatchingsError(w, err, "failed to create matching")
		return
	}
	httperrors.Write(w, http.StatusCreated, dto.CreateMatchingResponse{MatchingID: matching.ID})
}

// AdvanceRound closes the current round for every still-waiting team.
func (h *AdminHandler) AdvanceRound(w http.ResponseWriter, r *http.Request) {
	moved, err := h.teams.AdvanceRound(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to advance round")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.AdvanceRoundResponse{MovedTeams: moved})
}

// ListSucceededMatchings feeds the chat-room creation worklist.
func (h *AdminHandler) ListSucceededMatchings(w http.ResponseWriter, r *http.Request) {
	records, err := h.succeeded.ListSucceeded(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list succeeded matchings")
		return
	}

	items := make([]dto.AdminSucceededMatchingResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.AdminSucceededMatchingResponse{
			MatchingID:    record.MatchingID,
			MaleTeamID:    record.MaleTeamID,
			FemaleTeamID:  record.FemaleTeamID,
			MatchedAt:     record.MatchedAt,
			ChatIsCreated: record.ChatIsCreated,
		})
	}
	httperrors.Write(w, http.StatusOK, items)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	records, err := h.users.ListForAdmin(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list users")
		return
	}

	items := make([]dto.AdminUserResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.AdminUserResponse{
			ID:          record.User.ID,
			Nickname:    record.User.Nickname,
			Phone:       record.User.Phone,
			TeamID:      record.TeamID,
			Status:      string(record.Status),
			StatusLabel: record.StatusLabel,
			CreatedAt:   record.User.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, items)
}

func (h *AdminHandler) GrantCoupon(w http.ResponseWriter, r *http.Request) {
	var req dto.GrantCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	coupon, err := h.coupons.Grant(r.Context(), req.UserID, req.TypeID, req.ExpiresAt)
	if err != nil {
		handleCouponsError(w, err, "failed to grant coupon")
		return
	}
	httperrors.Write(w, http.StatusCreated, dto.GrantCouponResponse{CouponID: coupon.ID})
}

func (h *AdminHandler) MarkChatCreated(w http.ResponseWriter, r *http.Request) {
	matchingID, ok := pathID(r, "matchingID")
	if !ok {
		writeBadRequest(w, "INVALID_REQUEST", "invalid matching id")
		return
	}

	if err := h.matchings.MarkChatCreated(r.Context(), matchingID); err != nil {
		handleMatchingsError(w, err, "failed to mark chat created")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func (h *AdminHandler) DeleteMatching(w http.ResponseWriter, r *http.Request) {
	matchingID, ok := pathID(r, "matchingID")
	if !ok {
		writeBadRequest(w, "INVALID_REQUEST", "invalid matching id")
		return
	}

	if err := h.matchings.Delete(r.Context(), matchingID); err != nil {
		handleMatchingsError(w, err, "failed to delete matching")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}
