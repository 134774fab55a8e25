package dto

type RedeemInvitationRequest struct {
	ReferralCode string `json:"referral_code"`
}

type RedeemInvitationResponse struct {
	InvitationID int64 `json:"invitation_id"`
}
