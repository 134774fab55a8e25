package model

import (
	"time"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
)

type Team struct {
	ID                 int64            `json:"id"`
	UserID             int64            `json:"user_id"`
	Gender             enums.TeamGender `json:"gender"`
	MemberCount        int              `json:"member_count"`
	Universities       []int64          `json:"universities"`
	Areas              []int64          `json:"areas"`
	Intro              string           `json:"intro"`
	Drink              int              `json:"drink"`
	PrefSameUniversity bool             `json:"pref_same_university"`
	PrefAgeMin         int              `json:"pref_age_min"`
	PrefAgeMax         int              `json:"pref_age_max"`
	StartRound         int              `json:"start_round"`
	CurrentRound       int              `json:"current_round"`
	CreatedAt          time.Time        `json:"created_at"`
	DeletedAt          *time.Time       `json:"deleted_at,omitempty"`
}

type TeamMember struct {
	ID     int64 `json:"id"`
	TeamID int64 `json:"team_id"`
	Age    int   `json:"age"`
	Mbti   int   `json:"mbti"`
	Role   int   `json:"role"`
	Vibe   int   `json:"vibe"`
}

type TeamAvailableDate struct {
	ID     int64     `json:"id"`
	TeamID int64     `json:"team_id"`
	Date   time.Time `json:"date"`
}
