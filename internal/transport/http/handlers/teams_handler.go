package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	authsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/auth"
	teamsvc "github.com/MoonGyu1/Meetinghakgaeron/internal/services/teams"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/dto"
	httperrors "github.com/MoonGyu1/Meetinghakgaeron/internal/transport/http/errors"
)

type TeamsHandler struct {
	teams *teamsvc.Service
}

func NewTeamsHandler(teams *teamsvc.Service) *TeamsHandler {
	return &TeamsHandler{teams: teams}
}

func (h *TeamsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.CreateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	teamID, err := h.teams.Create(r.Context(), identity.UserID, teamsvc.CreateTeamInput{
		Gender:             enums.TeamGender(req.Gender),
		MemberCount:        req.MemberCount,
		Universities:       req.Universities,
		Areas:              req.Areas,
		Intro:              req.Intro,
		Drink:              req.Drink,
		PrefSameUniversity: req.PrefSameUniversity,
		PrefAgeMin:         req.PrefAgeMin,
		PrefAgeMax:         req.PrefAgeMax,
		AvailableDates:     req.AvailableDates,
		Members:            toMembers(req.Members),
	})
	if err != nil {
		handleTeamsError(w, err, "failed to create team")
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CreateTeamResponse{TeamID: teamID})
}

func (h *TeamsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	teams, err := h.teams.ListByUserID(r.Context(), identity.UserID)
	if err != nil {
		handleTeamsError(w, err, "failed to list teams")
		return
	}

	items := make([]dto.TeamResponse, 0, len(teams))
	for _, team := range teams {
		items = append(items, toTeamResponse(team))
	}
	httperrors.Write(w, http.StatusOK, items)
}

func (h *TeamsHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	teamID, ok := pathID(r, "teamID")
	if !ok {
		writeBadRequest(w, "INVALID_REQUEST", "invalid team id")
		return
	}

	var req dto.UpdateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	var gender *enums.TeamGender
	if req.Gender != nil {
		value := enums.TeamGender(*req.Gender)
		gender = &value
	}
	var members []model.TeamMember
	if req.Members != nil {
		members = toMembers(req.Members)
	}

	err := h.teams.Update(r.Context(), identity.UserID, teamID, teamsvc.UpdateTeamInput{
		Gender:             gender,
		MemberCount:        req.MemberCount,
		Universities:       req.Universities,
		Areas:              req.Areas,
		Intro:              req.Intro,
		Drink:              req.Drink,
		PrefSameUniversity: req.PrefSameUniversity,
		PrefAgeMin:         req.PrefAgeMin,
		PrefAgeMax:         req.PrefAgeMax,
		AvailableDates:     req.AvailableDates,
		Members:            members,
	})
	if err != nil {
		handleTeamsError(w, err, "failed to update team")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

func (h *TeamsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	teamID, ok := pathID(r, "teamID")
	if !ok {
		writeBadRequest(w, "INVALID_REQUEST", "invalid team id")
		return
	}

	if err := h.teams.Delete(r.Context(), identity.UserID, teamID); err != nil {
		handleTeamsError(w, err, "failed to delete team")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.MatchingActionResponse{OK: true})
}

// AppliedCounts is public; the landing page polls it before signup.
func (h *TeamsHandler) AppliedCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.teams.AppliedCounts(r.Context())
	if err != nil {
		handleTeamsError(w, err, "failed to count applied teams")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.AppliedCountsResponse{Counts: counts})
}

func handleTeamsError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, teamsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	case errors.Is(err, teamsvc.ErrTeamExists):
		writeBadRequest(w, "TEAM_EXISTS", "user already has an active team")
	case errors.Is(err, teamsvc.ErrAlreadyMatched):
		writeBadRequest(w, "ALREADY_MATCHED_TEAM", "team already has a matching")
	case errors.Is(err, teamsvc.ErrMatchingFailed):
		writeBadRequest(w, "MATCHING_ALREADY_FAILED_TEAM", "team is out of matching rounds")
	case errors.Is(err, teamsvc.ErrTeamNotFound):
		writeNotFound(w, "TEAM_NOT_FOUND", "team not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}

func toMembers(payload []dto.TeamMemberPayload) []model.TeamMember {
	members := make([]model.TeamMember, 0, len(payload))
	for _, m := range payload {
		members = append(members, model.TeamMember{
			Age:  m.Age,
			Mbti: m.Mbti,
			Role: m.Role,
			Vibe: m.Vibe,
		})
	}
	return members
}

func toTeamResponse(team model.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:                 team.ID,
		Gender:             int(team.Gender),
		MemberCount:        team.MemberCount,
		Universities:       team.Universities,
		Areas:              team.Areas,
		Intro:              team.Intro,
		Drink:              team.Drink,
		PrefSameUniversity: team.PrefSameUniversity,
		PrefAgeMin:         team.PrefAgeMin,
		PrefAgeMax:         team.PrefAgeMax,
		StartRound:         team.StartRound,
		CurrentRound:       team.CurrentRound,
		CreatedAt:          team.CreatedAt,
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
