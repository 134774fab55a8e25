package dto

import "time"

type AdminUserResponse struct {
	ID          int64     `json:"id"`
	Nickname    string    `json:"nickname"`
	Phone       string    `json:"phone,omitempty"`
	TeamID      int64     `json:"team_id,omitempty"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateMatchingRequest struct {
	MaleTeamID   int64 `json:"male_team_id"`
	FemaleTeamID int64 `json:"female_team_id"`
}

type CreateMatchingResponse struct {
	MatchingID int64 `json:"matching_id"`
}

type AdvanceRoundResponse struct {
	MovedTeams int64 `json:"moved_teams"`
}

type AdminSucceededMatchingResponse struct {
	MatchingID    int64     `json:"matching_id"`
	MaleTeamID    int64     `json:"male_team_id"`
	FemaleTeamID  int64     `json:"female_team_id"`
	MatchedAt     time.Time `json:"matched_at"`
	ChatIsCreated bool      `json:"chat_is_created"`
}
