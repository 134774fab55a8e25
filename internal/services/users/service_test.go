package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

type userStoreStub struct {
	users   map[int64]model.User
	deleted []int64
	phones  map[int64]string
}

func (s *userStoreStub) GetByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (s *userStoreStub) UpdatePhone(_ context.Context, userID int64, phone string) error {
	if _, ok := s.users[userID]; !ok {
		return pgrepo.ErrUserNotFound
	}
	if s.phones == nil {
		s.phones = map[int64]string{}
	}
	s.phones[userID] = phone
	return nil
}

func (s *userStoreStub) UpdateGender(_ context.Context, userID int64, _ string) error {
	if _, ok := s.users[userID]; !ok {
		return pgrepo.ErrUserNotFound
	}
	return nil
}

func (s *userStoreStub) UpdateAgeRange(_ context.Context, userID int64, _ string) error {
	if _, ok := s.users[userID]; !ok {
		return pgrepo.ErrUserNotFound
	}
	return nil
}

func (s *userStoreStub) SoftDelete(_ context.Context, userID int64, _ time.Time) error {
	if _, ok := s.users[userID]; !ok {
		return pgrepo.ErrUserNotFound
	}
	s.deleted = append(s.deleted, userID)
	return nil
}

func (s *userStoreStub) ListAll(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

type teamReaderStub struct {
	teams          map[int64]model.Team
	activeByUserID map[int64]int64
}

func (s *teamReaderStub) GetByID(_ context.Context, teamID int64) (model.Team, error) {
	team, ok := s.teams[teamID]
	if !ok {
		return model.Team{}, pgrepo.ErrTeamNotFound
	}
	return team, nil
}

func (s *teamReaderStub) GetIDByUserID(_ context.Context, userID int64) (int64, error) {
	return s.activeByUserID[userID], nil
}

type matchingReaderStub struct {
	byTeamID map[int64]*model.Matching
}

func (s *matchingReaderStub) GetByTeamID(_ context.Context, teamID int64) (*model.Matching, error) {
	return s.byTeamID[teamID], nil
}

type countersStub struct {
	tickets int
}

func (s *countersStub) CountByUserID(_ context.Context, _ int64) (int, error) {
	return s.tickets, nil
}

type couponCounterStub struct {
	total  int
	byType map[int64]int
}

func (s *couponCounterStub) CountByUserID(_ context.Context, _ int64) (int, error) {
	return s.total, nil
}

func (s *couponCounterStub) CountByTypeAndUserID(_ context.Context, typeID, _ int64) (int, error) {
	return s.byType[typeID], nil
}

type invitationCounterStub struct {
	count int
}

func (s *invitationCounterStub) CountByInviter(_ context.Context, _ int64) (int, error) {
	return s.count, nil
}

type orderCleanerStub struct {
	deleted []int64
}

func (s *orderCleanerStub) SoftDeleteByUserID(_ context.Context, userID int64, _ time.Time) error {
	s.deleted = append(s.deleted, userID)
	return nil
}

type teamDeleterStub struct {
	deleted []int64
}

func (s *teamDeleterStub) SoftDelete(_ context.Context, teamID int64, _ time.Time) error {
	s.deleted = append(s.deleted, teamID)
	return nil
}

type fixture struct {
	svc         *Service
	users       *userStoreStub
	teams       *teamReaderStub
	matchings   *matchingReaderStub
	orders      *orderCleanerStub
	teamDeleter *teamDeleterStub
	invitations *invitationCounterStub
	now         time.Time
}

func newFixture() *fixture {
	now := time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		users: &userStoreStub{users: map[int64]model.User{
			7: {ID: 7, Nickname: "민수", Phone: "01011112222"},
		}},
		teams: &teamReaderStub{
			teams:          map[int64]model.Team{},
			activeByUserID: map[int64]int64{},
		},
		matchings:   &matchingReaderStub{byTeamID: map[int64]*model.Matching{}},
		orders:      &orderCleanerStub{},
		teamDeleter: &teamDeleterStub{},
		invitations: &invitationCounterStub{},
		now:         now,
	}
	f.svc = NewService(Dependencies{
		Users:       f.users,
		Teams:       f.teams,
		Matchings:   f.matchings,
		Tickets:     &countersStub{tickets: 2},
		Coupons:     &couponCounterStub{total: 1, byType: map[int64]int{1: 1}},
		Invitations: f.invitations,
		Orders:      f.orders,
		TeamDelete:  f.teamDeleter,
		MaxTrial:    3,
	})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestMatchingStatus(t *testing.T) {
	t.Run("no team resolves to the empty status", func(t *testing.T) {
		f := newFixture()

		status, matching, err := f.svc.MatchingStatus(context.Background(), 7)
		if err != nil {
			t.Fatalf("MatchingStatus() error = %v", err)
		}
		if status != enums.MatchingStatusNone {
			t.Fatalf("status = %q, want empty", status)
		}
		if matching != nil {
			t.Fatal("matching returned without a team")
		}
	})

	t.Run("team without matching is applied", func(t *testing.T) {
		f := newFixture()
		f.teams.activeByUserID[7] = 31
		f.teams.teams[31] = model.Team{ID: 31, UserID: 7, StartRound: 5, CurrentRound: 6}

		status, _, err := f.svc.MatchingStatus(context.Background(), 7)
		if err != nil {
			t.Fatalf("MatchingStatus() error = %v", err)
		}
		if status != enums.MatchingStatusApplied {
			t.Fatalf("status = %q, want applied", status)
		}
	})

	t.Run("soft deleted matching still explains the outcome", func(t *testing.T) {
		f := newFixture()
		f.teams.activeByUserID[7] = 31
		f.teams.teams[31] = model.Team{ID: 31, UserID: 7, StartRound: 5, CurrentRound: 6}

		refused := false
		deletedAt := f.now.Add(-time.Hour)
		f.matchings.byTeamID[31] = &model.Matching{
			ID:                 100,
			MaleTeamID:         31,
			FemaleTeamID:       32,
			MaleTeamIsAccepted: &refused,
			CreatedAt:          f.now.Add(-2 * time.Hour),
			DeletedAt:          &deletedAt,
		}

		status, matching, err := f.svc.MatchingStatus(context.Background(), 7)
		if err != nil {
			t.Fatalf("MatchingStatus() error = %v", err)
		}
		if status != enums.MatchingStatusOurteamRefused {
			t.Fatalf("status = %q, want ourteam refused", status)
		}
		if matching == nil {
			t.Fatal("matching record missing from response")
		}
	})
}

func TestCounts(t *testing.T) {
	t.Run("passes raw counts through", func(t *testing.T) {
		f := newFixture()
		f.invitations.count = 3

		counts, err := f.svc.Counts(context.Background(), 7)
		if err != nil {
			t.Fatalf("Counts() error = %v", err)
		}
		if counts.Tickets != 2 || counts.Coupons != 1 || counts.Invitations != 3 {
			t.Fatalf("counts = %+v", counts)
		}
	})

	t.Run("caps the invitation counter", func(t *testing.T) {
		f := newFixture()
		f.invitations.count = 11

		counts, err := f.svc.Counts(context.Background(), 7)
		if err != nil {
			t.Fatalf("Counts() error = %v", err)
		}
		if counts.Invitations != InvitationDisplayCap {
			t.Fatalf("invitations = %d, want %d", counts.Invitations, InvitationDisplayCap)
		}
	})
}

func TestUpdatePhone(t *testing.T) {
	t.Run("stores a well formed number", func(t *testing.T) {
		f := newFixture()

		if err := f.svc.UpdatePhone(context.Background(), 7, "01033334444"); err != nil {
			t.Fatalf("UpdatePhone() error = %v", err)
		}
		if f.users.phones[7] != "01033334444" {
			t.Fatalf("stored phone = %q", f.users.phones[7])
		}
	})

	t.Run("rejects a formatted number", func(t *testing.T) {
		f := newFixture()

		err := f.svc.UpdatePhone(context.Background(), 7, "010-3333-4444")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("UpdatePhone() error = %v, want ErrValidation", err)
		}
	})
}

func TestDelete(t *testing.T) {
	t.Run("removes team, orders and user", func(t *testing.T) {
		f := newFixture()
		f.teams.activeByUserID[7] = 31

		if err := f.svc.Delete(context.Background(), 7); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if len(f.teamDeleter.deleted) != 1 || f.teamDeleter.deleted[0] != 31 {
			t.Fatalf("deleted teams = %v, want [31]", f.teamDeleter.deleted)
		}
		if len(f.orders.deleted) != 1 || f.orders.deleted[0] != 7 {
			t.Fatalf("order cleanup for users %v, want [7]", f.orders.deleted)
		}
		if len(f.users.deleted) != 1 || f.users.deleted[0] != 7 {
			t.Fatalf("deleted users = %v, want [7]", f.users.deleted)
		}
	})

	t.Run("works without an active team", func(t *testing.T) {
		f := newFixture()

		if err := f.svc.Delete(context.Background(), 7); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if len(f.teamDeleter.deleted) != 0 {
			t.Fatal("team delete called without an active team")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture()

		err := f.svc.Delete(context.Background(), 99)
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("Delete() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestListForAdmin(t *testing.T) {
	f := newFixture()
	f.teams.activeByUserID[7] = 31
	f.teams.teams[31] = model.Team{ID: 31, UserID: 7, StartRound: 5, CurrentRound: 6}

	records, err := f.svc.ListForAdmin(context.Background())
	if err != nil {
		t.Fatalf("ListForAdmin() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	record := records[0]
	if record.TeamID != 31 {
		t.Errorf("team id = %d, want 31", record.TeamID)
	}
	if record.Status != enums.MatchingStatusApplied {
		t.Errorf("status = %q, want applied", record.Status)
	}
	if record.StatusLabel == "" {
		t.Error("status label empty")
	}
}
