package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
	matchsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/matchings"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/dto"
	httperrors "github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/errors"
)

type MatchingsHandler struct {
	matchings *matchsvc.Service
}

func NewMatchingsHandler(matchings *matchsvc.Service) *MatchingsHandler {
	return &MatchingsHandler{matchings: matchings}
}

func (h *MatchingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	matchingID, ok := pathID(r, "matchingID")
	if !ok {
		writeBadRequest(w, "INVALID_REQUEST", "invalid matching id")
		return
	}

	detail, err := h.matchings.GetDetail(r.Context(), matchingID)
	if err != nil {
		handleMatchingsError(w, err, "failed to load matching")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchingDetailResponse{
		ID: detail.Matching.ID,
		Male: dto.MatchingSideResponse{
			Team:       toTeamResponse(detail.Male.Team),
			IsAccepted: detail.Male.IsAccepted,
			Status:     string(detail.Male.Status),
		},
		Female: dto.MatchingSideResponse{
			Team:       toTeamResponse(detail.Female.Team),
			IsAccepted: detail.Female.IsAccepted,
			Status:     string(detail.Female.Status),
		},
		Deadline:      detail.Deadline,
		ChatCreatedAt: detail.Matching.ChatCreatedAt,
		CreatedAt:     detail.Matching.CreatedAt,
	})
}

func (h *MatchingsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	matchingID, ok := pathID(r, "matchingID")
	if !ok {
		writeBadRequest(w, "INVALID_REQUEST", "invalid matching id")
		return
	}

	if err := h.matchings.Accept(r.Context(), identity.UserID, matchingID); err != nil {
		handleMatchingsError(w, err, "failed to accept matching")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func (h *MatchingsHandler) Refuse(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	matchingID, ok := pathID(r, "matchingID")
	if !ok {
		writeBadRequest(w, "INVALID_REQUEST", "invalid matching id")
		return
	}

	if err := h.matchings.Refuse(r.Context(), identity.UserID, matchingID); err != nil {
		handleMatchingsError(w, err, "failed to refuse matching")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func (h *MatchingsHandler) RefuseReason(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	matchingID, ok := pathID(r, "matchingID")
	if !ok {
		writeBadRequest(w, "INVALID_REQUEST", "invalid matching id")
		return
	}

	var req dto.RefuseReasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.matchings.SubmitRefuseReason(r.Context(), identity.UserID, matchingID, req.Reason); err != nil {
		handleMatchingsError(w, err, "failed to save refuse reason")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func handleMatchingsError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, matchsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	case errors.Is(err, matchsvc.ErrMatchingNotFound):
		writeNotFound(w, "MATCHING_NOT_FOUND", "matching not found")
	case errors.Is(err, matchsvc.ErrNotYourTeam):
		writeForbidden(w, "NOT_YOUR_TEAM", "matching does not involve your team")
	case errors.Is(err, matchsvc.ErrAlreadyResponded):
		writeBadRequest(w, "ALREADY_RESPONDED", "team already responded to this matching")
	case errors.Is(err, matchsvc.ErrWindowExpired):
		writeBadRequest(w, "WINDOW_EXPIRED", "accept window has expired")
	case errors.Is(err, matchsvc.ErrNoTicket):
		writeBadRequest(w, "NO_TICKET", "no usable ticket")
	case errors.Is(err, matchsvc.ErrTeamNotFound):
		writeNotFound(w, "TEAM_NOT_FOUND", "team not found")
	case errors.Is(err, matchsvc.ErrTeamMatched):
		writeBadRequest(w, "TEAM_ALREADY_MATCHED", "team already has an active matching")
	case errors.Is(err, matchsvc.ErrGenderMismatch):
		writeBadRequest(w, "GENDER_MISMATCH", "teams must have opposite genders")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}
