package model

import "time"

// Invitation records one successful referral-code use.
type Invitation struct {
	ID            int64      `json:"id"`
	InviterUserID int64      `json:"inviter_user_id"`
	InviteeUserID int64      `json:"invitee_user_id"`
	CreatedAt     time.Time  `json:"created_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}
