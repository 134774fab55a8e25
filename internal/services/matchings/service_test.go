package matchings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/services/tickets"
)

type matchingStoreStub struct {
	matchings map[int64]model.Matching

	accepted       []int64
	refused        []int64
	clearedTickets []bool
	softDeleted    []int64
	chatMarked     []int64
	refuseReasons  []string
}

func (s *matchingStoreStub) GetByID(_ context.Context, matchingID int64) (model.Matching, error) {
	m, ok := s.matchings[matchingID]
	if !ok {
		return model.Matching{}, pgrepo.ErrMatchingNotFound
	}
	return m, nil
}

func (s *matchingStoreStub) GetByTeamID(_ context.Context, teamID int64) (*model.Matching, error) {
	for _, m := range s.matchings {
		if m.MaleTeamID == teamID || m.FemaleTeamID == teamID {
			copied := m
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *matchingStoreStub) GetIDByTeamID(_ context.Context, teamID int64) (int64, error) {
	for _, m := range s.matchings {
		if m.DeletedAt == nil && (m.MaleTeamID == teamID || m.FemaleTeamID == teamID) {
			return m.ID, nil
		}
	}
	return 0, nil
}

func (s *matchingStoreStub) Create(_ context.Context, maleTeamID, femaleTeamID int64) (model.Matching, error) {
	id := int64(len(s.matchings) + 1000)
	m := model.Matching{
		ID:           id,
		MaleTeamID:   maleTeamID,
		FemaleTeamID: femaleTeamID,
		CreatedAt:    time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	s.matchings[id] = m
	return m, nil
}

func (s *matchingStoreStub) AcceptSide(_ context.Context, _ pgx.Tx, matchingID int64, isMale bool, ticketID int64) error {
	s.accepted = append(s.accepted, matchingID)
	m := s.matchings[matchingID]
	accepted := true
	if isMale {
		m.MaleTeamIsAccepted = &accepted
		m.MaleTeamTicketID = &ticketID
	} else {
		m.FemaleTeamIsAccepted = &accepted
		m.FemaleTeamTicketID = &ticketID
	}
	s.matchings[matchingID] = m
	return nil
}

func (s *matchingStoreStub) RefuseSide(_ context.Context, _ pgx.Tx, matchingID int64, isMale bool) error {
	s.refused = append(s.refused, matchingID)
	m := s.matchings[matchingID]
	refusedFlag := false
	if isMale {
		m.MaleTeamIsAccepted = &refusedFlag
	} else {
		m.FemaleTeamIsAccepted = &refusedFlag
	}
	s.matchings[matchingID] = m
	return nil
}

func (s *matchingStoreStub) ClearSideTicket(_ context.Context, _ pgx.Tx, _ int64, isMale bool) error {
	s.clearedTickets = append(s.clearedTickets, isMale)
	return nil
}

func (s *matchingStoreStub) SetChatCreatedAt(_ context.Context, matchingID int64, _ time.Time) error {
	if _, ok := s.matchings[matchingID]; !ok {
		return pgrepo.ErrMatchingNotFound
	}
	s.chatMarked = append(s.chatMarked, matchingID)
	return nil
}

func (s *matchingStoreStub) SoftDelete(_ context.Context, _ pgx.Tx, matchingID int64, _ time.Time) error {
	s.softDeleted = append(s.softDeleted, matchingID)
	return nil
}

func (s *matchingStoreStub) CreateRefuseReason(_ context.Context, _, _ int64, reason string) error {
	s.refuseReasons = append(s.refuseReasons, reason)
	return nil
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

type userReaderStub struct {
	users map[int64]model.User
}

func (s *userReaderStub) GetByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

type ticketTakerStub struct {
	nextTicketID int64
	empty        bool
	taken        []int64
	refunded     []int64
}

func (s *ticketTakerStub) Take(_ context.Context, _ pgx.Tx, userID int64) (model.Ticket, error) {
	if s.empty {
		return model.Ticket{}, tickets.ErrNoTicket
	}
	s.nextTicketID++
	s.taken = append(s.taken, userID)
	return model.Ticket{ID: s.nextTicketID, UserID: userID}, nil
}

func (s *ticketTakerStub) Refund(_ context.Context, _ pgx.Tx, ticketID int64) error {
	s.refunded = append(s.refunded, ticketID)
	return nil
}

type smsSenderStub struct {
	sent []string
	err  error
}

func (s *smsSenderStub) Send(_ context.Context, _ enums.SMSType, _ enums.SMSContentType, to, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

type fixture struct {
	svc       *Service
	matchings *matchingStoreStub
	teams     *teamReaderStub
	users     *userReaderStub
	tickets   *ticketTakerStub
	sms       *smsSenderStub
	now       time.Time
}

// Matching 100 pairs male team 31 (user 7) against female team 32 (user 8),
// created one hour before the fixture clock.
func newFixture() *fixture {
	now := time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		matchings: &matchingStoreStub{matchings: map[int64]model.Matching{
			100: {
				ID:           100,
				MaleTeamID:   31,
				FemaleTeamID: 32,
				CreatedAt:    now.Add(-time.Hour),
			},
		}},
		teams: &teamReaderStub{
			teams: map[int64]model.Team{
				31: {ID: 31, UserID: 7, Gender: enums.TeamGenderMale, StartRound: 5, CurrentRound: 5},
				32: {ID: 32, UserID: 8, Gender: enums.TeamGenderFemale, StartRound: 5, CurrentRound: 5},
			},
			activeByUserID: map[int64]int64{7: 31, 8: 32},
		},
		users: &userReaderStub{users: map[int64]model.User{
			7: {ID: 7, Phone: "01011112222"},
			8: {ID: 8, Phone: "01033334444"},
		}},
		tickets: &ticketTakerStub{},
		sms:     &smsSenderStub{},
		now:     now,
	}
	f.svc = NewService(Dependencies{
		Matchings: f.matchings,
		Teams:     f.teams,
		Users:     f.users,
		Tickets:   f.tickets,
		SMS:       f.sms,
		MaxTrial:  3,
	})
	f.svc.now = func() time.Time { return f.now }
	f.svc.withTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	}
	return f
}

func boolPtr(v bool) *bool { return &v }

func int64Ptr(v int64) *int64 { return &v }

func TestAccept(t *testing.T) {
	t.Run("spends a ticket and sets the flag", func(t *testing.T) {
		f := newFixture()

		if err := f.svc.Accept(context.Background(), 7, 100); err != nil {
			t.Fatalf("Accept() error = %v", err)
		}
		if len(f.tickets.taken) != 1 || f.tickets.taken[0] != 7 {
			t.Fatalf("tickets taken for users %v, want [7]", f.tickets.taken)
		}
		m := f.matchings.matchings[100]
		if m.MaleTeamIsAccepted == nil || !*m.MaleTeamIsAccepted {
			t.Fatal("male flag not set to accepted")
		}
		if m.MaleTeamTicketID == nil {
			t.Fatal("male ticket id not recorded")
		}
	})

	t.Run("without a ticket", func(t *testing.T) {
		f := newFixture()
		f.tickets.empty = true

		err := f.svc.Accept(context.Background(), 7, 100)
		if !errors.Is(err, ErrNoTicket) {
			t.Fatalf("Accept() error = %v, want ErrNoTicket", err)
		}
	})

	t.Run("after the window expired", func(t *testing.T) {
		f := newFixture()
		f.now = f.now.Add(24 * time.Hour)

		err := f.svc.Accept(context.Background(), 7, 100)
		if !errors.Is(err, ErrWindowExpired) {
			t.Fatalf("Accept() error = %v, want ErrWindowExpired", err)
		}
		if len(f.tickets.taken) != 0 {
			t.Fatal("ticket spent despite expired window")
		}
	})

	t.Run("twice", func(t *testing.T) {
		f := newFixture()

		if err := f.svc.Accept(context.Background(), 7, 100); err != nil {
			t.Fatalf("first Accept() error = %v", err)
		}
		err := f.svc.Accept(context.Background(), 7, 100)
		if !errors.Is(err, ErrAlreadyResponded) {
			t.Fatalf("second Accept() error = %v, want ErrAlreadyResponded", err)
		}
	})

	t.Run("by an outsider", func(t *testing.T) {
		f := newFixture()
		f.teams.activeByUserID[9] = 33

		err := f.svc.Accept(context.Background(), 9, 100)
		if !errors.Is(err, ErrNotYourTeam) {
			t.Fatalf("Accept() error = %v, want ErrNotYourTeam", err)
		}
	})

	t.Run("unknown matching", func(t *testing.T) {
		f := newFixture()

		err := f.svc.Accept(context.Background(), 7, 999)
		if !errors.Is(err, ErrMatchingNotFound) {
			t.Fatalf("Accept() error = %v, want ErrMatchingNotFound", err)
		}
	})
}

func TestRefuse(t *testing.T) {
	t.Run("plain refusal", func(t *testing.T) {
		f := newFixture()

		if err := f.svc.Refuse(context.Background(), 7, 100); err != nil {
			t.Fatalf("Refuse() error = %v", err)
		}
		m := f.matchings.matchings[100]
		if m.MaleTeamIsAccepted == nil || *m.MaleTeamIsAccepted {
			t.Fatal("male flag not set to refused")
		}
		if len(f.tickets.refunded) != 0 {
			t.Fatal("refund issued though partner never accepted")
		}
		if len(f.sms.sent) != 0 {
			t.Fatal("sms sent though partner never accepted")
		}
	})

	t.Run("refunds and notifies an accepted partner", func(t *testing.T) {
		f := newFixture()
		m := f.matchings.matchings[100]
		m.FemaleTeamIsAccepted = boolPtr(true)
		m.FemaleTeamTicketID = int64Ptr(55)
		f.matchings.matchings[100] = m

		if err := f.svc.Refuse(context.Background(), 7, 100); err != nil {
			t.Fatalf("Refuse() error = %v", err)
		}
		if len(f.tickets.refunded) != 1 || f.tickets.refunded[0] != 55 {
			t.Fatalf("refunded tickets = %v, want [55]", f.tickets.refunded)
		}
		if len(f.matchings.clearedTickets) != 1 || f.matchings.clearedTickets[0] != false {
			t.Fatalf("cleared sides = %v, want the female side", f.matchings.clearedTickets)
		}
		if len(f.sms.sent) != 1 || f.sms.sent[0] != "01033334444" {
			t.Fatalf("sms recipients = %v, want the female team owner", f.sms.sent)
		}
	})

	t.Run("sms failure does not fail the refusal", func(t *testing.T) {
		f := newFixture()
		f.sms.err = errors.New("sens unavailable")
		m := f.matchings.matchings[100]
		m.FemaleTeamIsAccepted = boolPtr(true)
		m.FemaleTeamTicketID = int64Ptr(55)
		f.matchings.matchings[100] = m

		if err := f.svc.Refuse(context.Background(), 7, 100); err != nil {
			t.Fatalf("Refuse() error = %v", err)
		}
		if len(f.tickets.refunded) != 1 {
			t.Fatal("refund missing when sms fails")
		}
	})

	t.Run("after our side already refused", func(t *testing.T) {
		f := newFixture()
		m := f.matchings.matchings[100]
		m.MaleTeamIsAccepted = boolPtr(false)
		f.matchings.matchings[100] = m

		err := f.svc.Refuse(context.Background(), 7, 100)
		if !errors.Is(err, ErrAlreadyResponded) {
			t.Fatalf("Refuse() error = %v, want ErrAlreadyResponded", err)
		}
	})
}

func TestSubmitRefuseReason(t *testing.T) {
	f := newFixture()

	if err := f.svc.SubmitRefuseReason(context.Background(), 7, 100, "분위기가 안 맞을 것 같아요"); err != nil {
		t.Fatalf("SubmitRefuseReason() error = %v", err)
	}
	if len(f.matchings.refuseReasons) != 1 {
		t.Fatalf("stored reasons = %v, want one", f.matchings.refuseReasons)
	}

	if err := f.svc.SubmitRefuseReason(context.Background(), 7, 100, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty reason error = %v, want ErrValidation", err)
	}
}

func TestGetDetail(t *testing.T) {
	f := newFixture()
	m := f.matchings.matchings[100]
	m.MaleTeamIsAccepted = boolPtr(true)
	m.MaleTeamTicketID = int64Ptr(55)
	f.matchings.matchings[100] = m

	detail, err := f.svc.GetDetail(context.Background(), 100)
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if detail.Male.Status != enums.MatchingStatusOurteamAccepted {
		t.Errorf("male status = %q, want ourteam accepted", detail.Male.Status)
	}
	if detail.Female.Status != enums.MatchingStatusMatched {
		t.Errorf("female status = %q, want matched", detail.Female.Status)
	}
	wantDeadline := m.CreatedAt.Add(24 * time.Hour)
	if !detail.Deadline.Equal(wantDeadline) {
		t.Errorf("deadline = %v, want %v", detail.Deadline, wantDeadline)
	}
}

func TestDeleteRefundsAcceptedSides(t *testing.T) {
	f := newFixture()
	m := f.matchings.matchings[100]
	m.MaleTeamIsAccepted = boolPtr(true)
	m.MaleTeamTicketID = int64Ptr(41)
	m.FemaleTeamIsAccepted = boolPtr(true)
	m.FemaleTeamTicketID = int64Ptr(42)
	f.matchings.matchings[100] = m

	if err := f.svc.Delete(context.Background(), 100); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(f.tickets.refunded) != 2 {
		t.Fatalf("refunded tickets = %v, want both sides", f.tickets.refunded)
	}
	if len(f.matchings.softDeleted) != 1 || f.matchings.softDeleted[0] != 100 {
		t.Fatalf("soft deleted = %v, want [100]", f.matchings.softDeleted)
	}
}

func TestMarkChatCreated(t *testing.T) {
	f := newFixture()

	if err := f.svc.MarkChatCreated(context.Background(), 100); err != nil {
		t.Fatalf("MarkChatCreated() error = %v", err)
	}
	if err := f.svc.MarkChatCreated(context.Background(), 999); !errors.Is(err, ErrMatchingNotFound) {
		t.Fatalf("unknown matching error = %v, want ErrMatchingNotFound", err)
	}
}

func TestCreatePairing(t *testing.T) {
	addUnmatchedTeams := func(f *fixture) {
		f.teams.teams[33] = model.Team{ID: 33, UserID: 9, Gender: enums.TeamGenderMale, StartRound: 5, CurrentRound: 5}
		f.teams.teams[34] = model.Team{ID: 34, UserID: 10, Gender: enums.TeamGenderFemale, StartRound: 5, CurrentRound: 5}
	}

	t.Run("pairs two unmatched teams", func(t *testing.T) {
		f := newFixture()
		addUnmatchedTeams(f)

		matching, err := f.svc.CreatePairing(context.Background(), 33, 34)
		if err != nil {
			t.Fatalf("CreatePairing() error = %v", err)
		}
		if matching.MaleTeamID != 33 || matching.FemaleTeamID != 34 {
			t.Fatalf("matching = %+v", matching)
		}
		if _, ok := f.matchings.matchings[matching.ID]; !ok {
			t.Fatal("matching not persisted")
		}
	})

	t.Run("team already in an active matching", func(t *testing.T) {
		f := newFixture()
		addUnmatchedTeams(f)

		if _, err := f.svc.CreatePairing(context.Background(), 31, 34); !errors.Is(err, ErrTeamMatched) {
			t.Fatalf("CreatePairing() error = %v, want ErrTeamMatched", err)
		}
	})

	t.Run("same gender on both sides", func(t *testing.T) {
		f := newFixture()
		addUnmatchedTeams(f)
		f.teams.teams[35] = model.Team{ID: 35, UserID: 11, Gender: enums.TeamGenderMale, StartRound: 5, CurrentRound: 5}

		if _, err := f.svc.CreatePairing(context.Background(), 33, 35); !errors.Is(err, ErrGenderMismatch) {
			t.Fatalf("CreatePairing() error = %v, want ErrGenderMismatch", err)
		}
	})

	t.Run("unknown team", func(t *testing.T) {
		f := newFixture()
		addUnmatchedTeams(f)

		if _, err := f.svc.CreatePairing(context.Background(), 99, 34); !errors.Is(err, ErrTeamNotFound) {
			t.Fatalf("CreatePairing() error = %v, want ErrTeamNotFound", err)
		}
	})

	t.Run("soft deleted team", func(t *testing.T) {
		f := newFixture()
		addUnmatchedTeams(f)
		deletedAt := f.now.Add(-time.Hour)
		team := f.teams.teams[33]
		team.DeletedAt = &deletedAt
		f.teams.teams[33] = team

		if _, err := f.svc.CreatePairing(context.Background(), 33, 34); !errors.Is(err, ErrTeamNotFound) {
			t.Fatalf("CreatePairing() error = %v, want ErrTeamNotFound", err)
		}
	})
}
