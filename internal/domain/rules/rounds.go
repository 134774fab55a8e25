package rules

import "github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"

// RoundsAttempted is the number of matching rounds a team has been through
// since it applied.
func RoundsAttempted(team *model.Team) int {
	if team == nil {
		return 0
	}
	return team.CurrentRound - team.StartRound
}

// Exhausted reports whether a team has run out of matching attempts.
func Exhausted(team *model.Team, maxTrial int) bool {
	return RoundsAttempted(team) >= maxTrial
}
