package teams

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/config"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/rules"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrTeamNotFound   = errors.New("team not found")
	ErrTeamExists     = errors.New("user already has an active team")
	ErrAlreadyMatched = errors.New("already matched team")
	ErrMatchingFailed = errors.New("matching already failed team")
)

type TeamStore interface {
	Create(ctx context.Context, params pgrepo.CreateTeamParams) (int64, error)
	GetByID(ctx context.Context, teamID int64) (model.Team, error)
	GetIDByUserID(ctx context.Context, userID int64) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Team, error)
	Update(ctx context.Context, teamID int64, params pgrepo.UpdateTeamParams) error
	ReplaceAvailableDates(ctx context.Context, teamID int64, dates []time.Time) error
	ReplaceMembers(ctx context.Context, teamID int64, members []model.TeamMember) error
	SoftDelete(ctx context.Context, teamID int64, now time.Time) error
	CountApplied(ctx context.Context, memberCount int, gender enums.TeamGender) (int, error)
	AdvanceRound(ctx context.Context) (int64, error)
}

type MatchingReader interface {
	GetIDByTeamID(ctx context.Context, teamID int64) (int64, error)
}

type Service struct {
	teams     TeamStore
	matchings MatchingReader
	matching  config.MatchingConfig
	now       func() time.Time
}

type Dependencies struct {
	Teams     TeamStore
	Matchings MatchingReader
	Matching  config.MatchingConfig
}

func NewService(deps Dependencies) *Service {
	return &Service{
		teams:     deps.Teams,
		matchings: deps.Matchings,
		matching:  deps.Matching,
		now:       time.Now,
	}
}

type CreateTeamInput struct {
	Gender             enums.TeamGender
	MemberCount        int
	Universities       []int64
	Areas              []int64
	Intro              string
	Drink              int
	PrefSameUniversity bool
	PrefAgeMin         int
	PrefAgeMax         int
	StartRound         int
	AvailableDates     []time.Time
	Members            []model.TeamMember
}

// Create registers the caller's new team. One active team per user.
func (s *Service) Create(ctx context.Context, userID int64, input CreateTeamInput) (int64, error) {
	if userID <= 0 || !input.Gender.Valid() {
		return 0, ErrValidation
	}
	if input.MemberCount != 2 && input.MemberCount != 3 {
		return 0, ErrValidation
	}
	if len(input.Members) != input.MemberCount {
		return 0, ErrValidation
	}
	if input.PrefAgeMin > input.PrefAgeMax {
		return 0, ErrValidation
	}
	if len(input.AvailableDates) == 0 {
		return 0, ErrValidation
	}

	existingID, err := s.teams.GetIDByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("check active team: %w", err)
	}
	if existingID != 0 {
		return 0, ErrTeamExists
	}

	// Round progress is relative; a fresh team starts with zero attempts.
	if input.StartRound <= 0 {
		input.StartRound = 1
	}

	teamID, err := s.teams.Create(ctx, pgrepo.CreateTeamParams{
		UserID:             userID,
		Gender:             input.Gender,
		MemberCount:        input.MemberCount,
		Universities:       input.Universities,
		Areas:              input.Areas,
		Intro:              input.Intro,
		Drink:              input.Drink,
		PrefSameUniversity: input.PrefSameUniversity,
		PrefAgeMin:         input.PrefAgeMin,
		PrefAgeMax:         input.PrefAgeMax,
		StartRound:         input.StartRound,
		AvailableDates:     input.AvailableDates,
		Members:            input.Members,
	})
	if err != nil {
		return 0, fmt.Errorf("create team: %w", err)
	}
	return teamID, nil
}

func (s *Service) GetByID(ctx context.Context, teamID int64) (model.Team, error) {
	if teamID <= 0 {
		return model.Team{}, ErrValidation
	}
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrTeamNotFound) {
			return model.Team{}, ErrTeamNotFound
		}
		return model.Team{}, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func (s *Service) ActiveTeamID(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	teamID, err := s.teams.GetIDByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get active team id: %w", err)
	}
	return teamID, nil
}

func (s *Service) ListByUserID(ctx context.Context, userID int64) ([]model.Team, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	teams, err := s.teams.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

type UpdateTeamInput struct {
	Gender             *enums.TeamGender
	MemberCount        *int
	Universities       []int64
	Areas              []int64
	Intro              *string
	Drink              *int
	PrefSameUniversity *bool
	PrefAgeMin         *int
	PrefAgeMax         *int
	AvailableDates     []time.Time
	Members            []model.TeamMember
}

// Update edits a team that has not yet been paired. A team with a matching
// record is frozen, and a team out of rounds must re-apply instead.
func (s *Service) Update(ctx context.Context, userID, teamID int64, input UpdateTeamInput) error {
	if userID <= 0 || teamID <= 0 {
		return ErrValidation
	}
	if input.Gender != nil && !input.Gender.Valid() {
		return ErrValidation
	}
	if input.MemberCount != nil && *input.MemberCount != 2 && *input.MemberCount != 3 {
		return ErrValidation
	}

	team, err := s.guardEditable(ctx, userID, teamID)
	if err != nil {
		return err
	}
	if input.Members != nil {
		memberCount := team.MemberCount
		if input.MemberCount != nil {
			memberCount = *input.MemberCount
		}
		if len(input.Members) != memberCount {
			return ErrValidation
		}
	}

	err = s.teams.Update(ctx, teamID, pgrepo.UpdateTeamParams{
		Gender:             input.Gender,
		MemberCount:        input.MemberCount,
		Universities:       input.Universities,
		Areas:              input.Areas,
		Intro:              input.Intro,
		Drink:              input.Drink,
		PrefSameUniversity: input.PrefSameUniversity,
		PrefAgeMin:         input.PrefAgeMin,
		PrefAgeMax:         input.PrefAgeMax,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("update team: %w", err)
	}

	if input.AvailableDates != nil {
		if err := s.teams.ReplaceAvailableDates(ctx, teamID, input.AvailableDates); err != nil {
			return fmt.Errorf("replace available dates: %w", err)
		}
	}
	if input.Members != nil {
		if err := s.teams.ReplaceMembers(ctx, teamID, input.Members); err != nil {
			return fmt.Errorf("replace members: %w", err)
		}
	}
	return nil
}

// Delete soft-deletes the caller's team. Same guards as Update.
func (s *Service) Delete(ctx context.Context, userID, teamID int64) error {
	if userID <= 0 || teamID <= 0 {
		return ErrValidation
	}
	if _, err := s.guardEditable(ctx, userID, teamID); err != nil {
		return err
	}
	if err := s.teams.SoftDelete(ctx, teamID, s.now().UTC()); err != nil {
		if errors.Is(err, pgrepo.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("delete team: %w", err)
	}
	return nil
}

func (s *Service) guardEditable(ctx context.Context, userID, teamID int64) (model.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrTeamNotFound) {
			return model.Team{}, ErrTeamNotFound
		}
		return model.Team{}, fmt.Errorf("get team: %w", err)
	}
	if team.DeletedAt != nil || team.UserID != userID {
		return model.Team{}, ErrTeamNotFound
	}

	matchingID, err := s.matchings.GetIDByTeamID(ctx, teamID)
	if err != nil {
		return model.Team{}, fmt.Errorf("check matching: %w", err)
	}
	if matchingID != 0 {
		return model.Team{}, ErrAlreadyMatched
	}
	if rules.Exhausted(&team, s.matching.MaxTrial) {
		return model.Team{}, ErrMatchingFailed
	}
	return team, nil
}

// AppliedCounts reports how many teams of each shape are waiting for the
// next round. Raw counts are clamped so the landing page never shows an
// emptied pool or an implausible spike.
func (s *Service) AppliedCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, 4)
	for _, memberCount := range []int{2, 3} {
		for _, gender := range []enums.TeamGender{enums.TeamGenderMale, enums.TeamGenderFemale} {
			n, err := s.teams.CountApplied(ctx, memberCount, gender)
			if err != nil {
				return nil, fmt.Errorf("count applied teams: %w", err)
			}
			key := fmt.Sprintf("%dvs%d_%s", memberCount, memberCount, gender)
			counts[key] = s.clamp(n)
		}
	}
	return counts, nil
}

// AdvanceRound moves every waiting team into the next round when the
// operator closes the current one. Returns how many teams moved.
func (s *Service) AdvanceRound(ctx context.Context) (int64, error) {
	moved, err := s.teams.AdvanceRound(ctx)
	if err != nil {
		return 0, fmt.Errorf("advance round: %w", err)
	}
	return moved, nil
}

func (s *Service) clamp(n int) int {
	if n < s.matching.MinTeam {
		return s.matching.MinTeam
	}
	if n > s.matching.MaxTeam {
		return s.matching.MaxTeam
	}
	return n
}
