package rules

import (
	"time"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
)

// AcceptWindow is how long both sides have to respond after a matching is
// created. Past the window a partner's silence counts as refusal.
const AcceptWindow = 24 * time.Hour

// ResolveMatchingStatus derives the matching status a team sees from its
// round progress, its matching record (soft-deleted records included) and
// the current time. Rules are evaluated top to bottom; the first hit wins.
//
// Refusal by our own side is terminal regardless of elapsed time: you acted,
// you own the outcome. The 24h window only splits the still-ambiguous
// states. matching may be nil (team was never paired); team nil means the
// user has not applied and yields MatchingStatusNone.
func ResolveMatchingStatus(team *model.Team, matching *model.Matching, now time.Time, maxTrial int) enums.MatchingStatus {
	if team == nil {
		return enums.MatchingStatusNone
	}

	if matching == nil {
		if !Exhausted(team, maxTrial) {
			return enums.MatchingStatusApplied
		}
		return enums.MatchingStatusFailed
	}

	our, partner, ok := matching.FlagsFor(team.ID)
	if !ok {
		// Matching does not reference this team; treat as never paired.
		if !Exhausted(team, maxTrial) {
			return enums.MatchingStatusApplied
		}
		return enums.MatchingStatusFailed
	}

	if accepted(our) && accepted(partner) {
		return enums.MatchingStatusSucceeded
	}
	if refused(our) {
		return enums.MatchingStatusOurteamRefused
	}

	deadline := matching.CreatedAt.Add(AcceptWindow)
	if now.Before(deadline) {
		if refused(partner) {
			return enums.MatchingStatusPartnerTeamRefused
		}
		if accepted(our) {
			return enums.MatchingStatusOurteamAccepted
		}
		return enums.MatchingStatusMatched
	}

	if our == nil {
		return enums.MatchingStatusNotResponded
	}
	// Past the window with our side accepted: the partner never accepted
	// (mutual acceptance was handled above), and silence after the deadline
	// counts the same as refusal.
	return enums.MatchingStatusPartnerTeamRefused
}

func accepted(flag *bool) bool {
	return flag != nil && *flag
}

func refused(flag *bool) bool {
	return flag != nil && !*flag
}
