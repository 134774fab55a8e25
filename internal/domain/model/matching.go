package model

import "time"

// Matching is one pairing between a male team and a female team. The
// acceptance flags are tri-state: nil until a side responds, then true
// (accepted) or false (refused).
type Matching struct {
	ID                   int64      `json:"id"`
	MaleTeamID           int64      `json:"male_team_id"`
	FemaleTeamID         int64      `json:"female_team_id"`
	MaleTeamIsAccepted   *bool      `json:"male_team_is_accepted"`
	FemaleTeamIsAccepted *bool      `json:"female_team_is_accepted"`
	MaleTeamTicketID     *int64     `json:"male_team_ticket_id,omitempty"`
	FemaleTeamTicketID   *int64     `json:"female_team_ticket_id,omitempty"`
	ChatCreatedAt        *time.Time `json:"chat_created_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	DeletedAt            *time.Time `json:"deleted_at,omitempty"`
}

// SideOf reports whether teamID is the male or the female side.
func (m *Matching) SideOf(teamID int64) (isMale bool, ok bool) {
	switch teamID {
	case m.MaleTeamID:
		return true, true
	case m.FemaleTeamID:
		return false, true
	default:
		return false, false
	}
}

// FlagsFor returns (our side's flag, partner side's flag) as seen from teamID.
func (m *Matching) FlagsFor(teamID int64) (our *bool, partner *bool, ok bool) {
	isMale, ok := m.SideOf(teamID)
	if !ok {
		return nil, nil, false
	}
	if isMale {
		return m.MaleTeamIsAccepted, m.FemaleTeamIsAccepted, true
	}
	return m.FemaleTeamIsAccepted, m.MaleTeamIsAccepted, true
}

// PartnerTeamID returns the opposite side's team id.
func (m *Matching) PartnerTeamID(teamID int64) (int64, bool) {
	isMale, ok := m.SideOf(teamID)
	if !ok {
		return 0, false
	}
	if isMale {
		return m.FemaleTeamID, true
	}
	return m.MaleTeamID, true
}

type MatchingRefuseReason struct {
	ID         int64     `json:"id"`
	MatchingID int64     `json:"matching_id"`
	TeamID     int64     `json:"team_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
