package dto

import "time"

type TeamMemberPayload struct {
	Age  int `json:"age"`
	Mbti int `json:"mbti"`
	Role int `json:"role"`
	Vibe int `json:"vibe"`
}

type CreateTeamRequest struct {
	Gender             int                 `json:"gender"`
	MemberCount        int                 `json:"member_count"`
	Universities       []int64             `json:"universities"`
	Areas              []int64             `json:"areas"`
	Intro              string              `json:"intro"`
	Drink              int                 `json:"drink"`
	PrefSameUniversity bool                `json:"pref_same_university"`
	PrefAgeMin         int                 `json:"pref_age_min"`
	PrefAgeMax         int                 `json:"pref_age_max"`
	AvailableDates     []time.Time         `json:"available_dates"`
	Members            []TeamMemberPayload `json:"members"`
}

type UpdateTeamRequest struct {
	Gender             *int                `json:"gender,omitempty"`
	MemberCount        *int                `json:"member_count,omitempty"`
	Universities       []int64             `json:"universities,omitempty"`
	Areas              []int64             `json:"areas,omitempty"`
	Intro              *string             `json:"intro,omitempty"`
	Drink              *int                `json:"drink,omitempty"`
	PrefSameUniversity *bool               `json:"pref_same_university,omitempty"`
	PrefAgeMin         *int                `json:"pref_age_min,omitempty"`
	PrefAgeMax         *int                `json:"pref_age_max,omitempty"`
	AvailableDates     []time.Time         `json:"available_dates,omitempty"`
	Members            []TeamMemberPayload `json:"members,omitempty"`
}

type TeamResponse struct {
	ID                 int64     `json:"id"`
	Gender             int       `json:"gender"`
	MemberCount        int       `json:"member_count"`
	Universities       []int64   `json:"universities"`
	Areas              []int64   `json:"areas"`
	Intro              string    `json:"intro"`
	Drink              int       `json:"drink"`
	PrefSameUniversity bool      `json:"pref_same_university"`
	PrefAgeMin         int       `json:"pref_age_min"`
	PrefAgeMax         int       `json:"pref_age_max"`
	StartRound         int       `json:"start_round"`
	CurrentRound       int       `json:"current_round"`
	CreatedAt          time.Time `json:"created_at"`
}

type CreateTeamResponse struct {
	TeamID int64 `json:"team_id"`
}

type AppliedCountsResponse struct {
	Counts map[string]int `json:"counts"`
}
