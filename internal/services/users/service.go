package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/rules"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/pkg/validate"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUserNotFound = errors.New("user not found")
)

// InvitationDisplayCap bounds the invitation counter shown on the profile
// page. The reward maxes out before this, so higher numbers carry no signal.
const InvitationDisplayCap = 4

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
	UpdatePhone(ctx context.Context, userID int64, phone string) error
	UpdateGender(ctx context.Context, userID int64, gender string) error
	UpdateAgeRange(ctx context.Context, userID int64, ageRange string) error
	SoftDelete(ctx context.Context, userID int64, now time.Time) error
	ListAll(ctx context.Context) ([]model.User, error)
}

type TeamReader interface {
	GetByID(ctx context.Context, teamID int64) (model.Team, error)
	GetIDByUserID(ctx context.Context, userID int64) (int64, error)
}

type MatchingReader interface {
	GetByTeamID(ctx context.Context, teamID int64) (*model.Matching, error)
}

type TicketCounter interface {
	CountByUserID(ctx context.Context, userID int64) (int, error)
}

type CouponCounter interface {
	CountByUserID(ctx context.Context, userID int64) (int, error)
	CountByTypeAndUserID(ctx context.Context, typeID, userID int64) (int, error)
}

type InvitationCounter interface {
	CountByInviter(ctx context.Context, inviterUserID int64) (int, error)
}

type OrderCleaner interface {
	SoftDeleteByUserID(ctx context.Context, userID int64, now time.Time) error
}

// TeamDeleter is the repo-level soft delete. Account closure removes the
// team even when the edit guards (matched, out of rounds) would refuse.
type TeamDeleter interface {
	SoftDelete(ctx context.Context, teamID int64, now time.Time) error
}

type Service struct {
	users       UserStore
	teams       TeamReader
	matchings   MatchingReader
	tickets     TicketCounter
	coupons     CouponCounter
	invitations InvitationCounter
	orders      OrderCleaner
	teamDelete  TeamDeleter
	maxTrial    int
	now         func() time.Time
}

type Dependencies struct {
	Users       UserStore
	Teams       TeamReader
	Matchings   MatchingReader
	Tickets     TicketCounter
	Coupons     CouponCounter
	Invitations InvitationCounter
	Orders      OrderCleaner
	TeamDelete  TeamDeleter
	MaxTrial    int
}

func NewService(deps Dependencies) *Service {
	return &Service{
		users:       deps.Users,
		teams:       deps.Teams,
		matchings:   deps.Matchings,
		tickets:     deps.Tickets,
		coupons:     deps.Coupons,
		invitations: deps.Invitations,
		orders:      deps.Orders,
		teamDelete:  deps.TeamDelete,
		maxTrial:    deps.MaxTrial,
		now:         time.Now,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if userID <= 0 {
		return model.User{}, ErrValidation
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// MatchingStatus derives the caller's current place in the matching
// pipeline. A user without an active team resolves to the empty status,
// which the transport layer serializes as null.
func (s *Service) MatchingStatus(ctx context.Context, userID int64) (enums.MatchingStatus, *model.Matching, error) {
	if userID <= 0 {
		return enums.MatchingStatusNone, nil, ErrValidation
	}

	teamID, err := s.teams.GetIDByUserID(ctx, userID)
	if err != nil {
		return enums.MatchingStatusNone, nil, fmt.Errorf("get team id: %w", err)
	}
	if teamID == 0 {
		return enums.MatchingStatusNone, nil, nil
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return enums.MatchingStatusNone, nil, fmt.Errorf("get team: %w", err)
	}

	// Soft-deleted matchings stay visible here: they are what explains a
	// refused or expired outcome to the team that lived it.
	matching, err := s.matchings.GetByTeamID(ctx, teamID)
	if err != nil {
		return enums.MatchingStatusNone, nil, fmt.Errorf("get matching: %w", err)
	}

	status := rules.ResolveMatchingStatus(&team, matching, s.now(), s.maxTrial)
	return status, matching, nil
}

func (s *Service) UpdatePhone(ctx context.Context, userID int64, phone string) error {
	if userID <= 0 || !validate.Phone(phone) {
		return ErrValidation
	}
	if err := s.users.UpdatePhone(ctx, userID, phone); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update phone: %w", err)
	}
	return nil
}

func (s *Service) UpdateGender(ctx context.Context, userID int64, gender string) error {
	if userID <= 0 || (gender != "male" && gender != "female") {
		return ErrValidation
	}
	if err := s.users.UpdateGender(ctx, userID, gender); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update gender: %w", err)
	}
	return nil
}

func (s *Service) UpdateAgeRange(ctx context.Context, userID int64, ageRange string) error {
	if userID <= 0 || ageRange == "" {
		return ErrValidation
	}
	if err := s.users.UpdateAgeRange(ctx, userID, ageRange); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update age range: %w", err)
	}
	return nil
}

// Counts is the profile page counter block.
type Counts struct {
	Tickets     int `json:"tickets"`
	Coupons     int `json:"coupons"`
	Invitations int `json:"invitations"`
}

func (s *Service) Counts(ctx context.Context, userID int64) (Counts, error) {
	if userID <= 0 {
		return Counts{}, ErrValidation
	}

	ticketCount, err := s.tickets.CountByUserID(ctx, userID)
	if err != nil {
		return Counts{}, fmt.Errorf("count tickets: %w", err)
	}
	couponCount, err := s.coupons.CountByUserID(ctx, userID)
	if err != nil {
		return Counts{}, fmt.Errorf("count coupons: %w", err)
	}
	invitationCount, err := s.invitations.CountByInviter(ctx, userID)
	if err != nil {
		return Counts{}, fmt.Errorf("count invitations: %w", err)
	}
	if invitationCount > InvitationDisplayCap {
		invitationCount = InvitationDisplayCap
	}

	return Counts{
		Tickets:     ticketCount,
		Coupons:     couponCount,
		Invitations: invitationCount,
	}, nil
}

func (s *Service) CouponCountByType(ctx context.Context, userID, typeID int64) (int, error) {
	if userID <= 0 || typeID <= 0 {
		return 0, ErrValidation
	}
	count, err := s.coupons.CountByTypeAndUserID(ctx, typeID, userID)
	if err != nil {
		return 0, fmt.Errorf("count coupons by type: %w", err)
	}
	return count, nil
}

// Delete closes the account: the user row, any active team and the user's
// orders are all soft-deleted so matching history stays reconstructable.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}

	teamID, err := s.teams.GetIDByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get team id: %w", err)
	}

	now := s.now().UTC()
	if teamID != 0 {
		if err := s.teamDelete.SoftDelete(ctx, teamID, now); err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
	}
	if err := s.orders.SoftDeleteByUserID(ctx, userID, now); err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}
	if err := s.users.SoftDelete(ctx, userID, now); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// AdminUserRecord is one row of the operator dashboard.
type AdminUserRecord struct {
	User        model.User
	TeamID      int64
	Status      enums.MatchingStatus
	StatusLabel string
}

// ListForAdmin resolves the matching status for every registered user.
func (s *Service) ListForAdmin(ctx context.Context) ([]AdminUserRecord, error) {
	allUsers, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	now := s.now()
	records := make([]AdminUserRecord, 0, len(allUsers))
	for _, user := range allUsers {
		record := AdminUserRecord{User: user}

		teamID, err := s.teams.GetIDByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("get team id for user %d: %w", user.ID, err)
		}
		if teamID != 0 {
			team, err := s.teams.GetByID(ctx, teamID)
			if err != nil {
				return nil, fmt.Errorf("get team %d: %w", teamID, err)
			}
			matching, err := s.matchings.GetByTeamID(ctx, teamID)
			if err != nil {
				return nil, fmt.Errorf("get matching for team %d: %w", teamID, err)
			}
			record.TeamID = teamID
			record.Status = rules.ResolveMatchingStatus(&team, matching, now, s.maxTrial)
		}

		record.StatusLabel = record.Status.Label()
		records = append(records, record)
	}
	return records, nil
}
