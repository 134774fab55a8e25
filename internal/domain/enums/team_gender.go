package enums

// TeamGender mirrors the gender column: 1 = male team, 2 = female team.
type TeamGender int

const (
	TeamGenderMale   TeamGender = 1
	TeamGenderFemale TeamGender = 2
)

func (g TeamGender) Valid() bool {
	return g == TeamGenderMale || g == TeamGenderFemale
}

// Opposite returns the gender a team is matched against.
func (g TeamGender) Opposite() TeamGender {
	if g == TeamGenderMale {
		return TeamGenderFemale
	}
	return TeamGenderMale
}

func (g TeamGender) String() string {
	switch g {
	case TeamGenderMale:
		return "male"
	case TeamGenderFemale:
		return "female"
	default:
		return "unknown"
	}
}
