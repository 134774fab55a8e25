package dto

import "time"

type MatchingSideResponse struct {
	Team       TeamResponse `json:"team"`
	IsAccepted *bool        `json:"is_accepted"`
	Status     string       `json:"status"`
}

type MatchingDetailResponse struct {
	ID            int64                `json:"id"`
	Male          MatchingSideResponse `json:"male_team"`
	Female        MatchingSideResponse `json:"female_team"`
	Deadline      time.Time            `json:"deadline"`
	ChatCreatedAt *time.Time           `json:"chat_created_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type RefuseReasonRequest struct {
	Reason string `json:"reason"`
}

type MatchingActionResponse struct {
	OK bool `json:"ok"`
}
