package dto

import "time"

type UserResponse struct {
	ID         int64     `json:"id"`
	Nickname   string    `json:"nickname"`
	Gender     string    `json:"gender,omitempty"`
	AgeRange   string    `json:"age_range,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	ReferralID string    `json:"referral_id"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// MatchingStatusResponse reports where the caller stands in the matching
// pipeline. Status is null while the user has no team.
type MatchingStatusResponse struct {
	MatchingStatus *string `json:"matching_status"`
	MatchingID     *int64  `json:"matching_id,omitempty"`
}

type UserCountsResponse struct {
	Tickets     int `json:"tickets"`
	Coupons     int `json:"coupons"`
	Invitations int `json:"invitations"`
}

type UpdatePhoneRequest struct {
	Phone string `json:"phone"`
}

type UpdateGenderRequest struct {
	Gender string `json:"gender"`
}

type UpdateAgeRangeRequest struct {
	AgeRange string `json:"age_range"`
}
