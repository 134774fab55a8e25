package model

import "time"

type User struct {
	ID         int64      `json:"id"`
	KakaoUID   int64      `json:"kakao_uid"`
	Nickname   string     `json:"nickname"`
	Gender     string     `json:"gender"`
	AgeRange   string     `json:"age_range"`
	Phone      string     `json:"phone"`
	ReferralID string     `json:"referral_id"`
	Role       string     `json:"role"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}
