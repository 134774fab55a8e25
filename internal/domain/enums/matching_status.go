package enums

// MatchingStatus is the discrete matching state surfaced to clients.
// The zero value means the user has not applied yet (no team); the API
// serializes it as JSON null.
type MatchingStatus string

const (
	MatchingStatusNone               MatchingStatus = ""
	MatchingStatusApplied            MatchingStatus = "APPLIED"
	MatchingStatusFailed             MatchingStatus = "FAILED"
	MatchingStatusSucceeded          MatchingStatus = "SUCCEEDED"
	MatchingStatusOurteamRefused     MatchingStatus = "OURTEAM_REFUSED"
	MatchingStatusPartnerTeamRefused MatchingStatus = "PARTNER_TEAM_REFUSED"
	MatchingStatusOurteamAccepted    MatchingStatus = "OURTEAM_ACCEPTED"
	MatchingStatusMatched            MatchingStatus = "MATCHED"
	MatchingStatusNotResponded       MatchingStatus = "NOT_RESPONDED"
)

// Label returns the Korean admin-page label for a status.
func (s MatchingStatus) Label() string {
	switch s {
	case MatchingStatusNone:
		return "신청 전"
	case MatchingStatusApplied:
		return "신청대기"
	case MatchingStatusFailed:
		return "매칭실패"
	case MatchingStatusSucceeded:
		return "매칭성공"
	case MatchingStatusOurteamRefused:
		return "우리팀거절"
	case MatchingStatusPartnerTeamRefused:
		return "거절당함"
	case MatchingStatusOurteamAccepted:
		return "수락완료"
	case MatchingStatusMatched:
		return "진행중"
	case MatchingStatusNotResponded:
		return "무응답"
	default:
		return string(s)
	}
}
