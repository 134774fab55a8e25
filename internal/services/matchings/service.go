package matchings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/rules"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/pkg/validate"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/services/tickets"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrMatchingNotFound = errors.New("matching not found")
	ErrNotYourTeam      = errors.New("matching does not involve the caller's team")
	ErrAlreadyResponded = errors.New("team already responded")
	ErrWindowExpired    = errors.New("accept window expired")
	ErrNoTicket         = errors.New("no usable ticket")
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamMatched      = errors.New("team already has an active matching")
	ErrGenderMismatch   = errors.New("teams must have opposite genders")
)

type MatchingStore interface {
	GetByID(ctx context.Context, matchingID int64) (model.Matching, error)
	GetByTeamID(ctx context.Context, teamID int64) (*model.Matching, error)
	GetIDByTeamID(ctx context.Context, teamID int64) (int64, error)
	Create(ctx context.Context, maleTeamID, femaleTeamID int64) (model.Matching, error)
	AcceptSide(ctx context.Context, tx pgx.Tx, matchingID int64, isMale bool, ticketID int64) error
	RefuseSide(ctx context.Context, tx pgx.Tx, matchingID int64, isMale bool) error
	ClearSideTicket(ctx context.Context, tx pgx.Tx, matchingID int64, isMale bool) error
	SetChatCreatedAt(ctx context.Context, matchingID int64, now time.Time) error
	SoftDelete(ctx context.Context, tx pgx.Tx, matchingID int64, now time.Time) error
	CreateRefuseReason(ctx context.Context, matchingID, teamID int64, reason string) error
}

type TeamReader interface {
	GetByID(ctx context.Context, teamID int64) (model.Team, error)
	GetIDByUserID(ctx context.Context, userID int64) (int64, error)
}

type UserReader interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type TicketTaker interface {
	Take(ctx context.Context, tx pgx.Tx, userID int64) (model.Ticket, error)
	Refund(ctx context.Context, tx pgx.Tx, ticketID int64) error
}

type SMSSender interface {
	Send(ctx context.Context, smsType enums.SMSType, contentType enums.SMSContentType, to, content, subject string) error
}

type Service struct {
	matchings MatchingStore
	teams     TeamReader
	users     UserReader
	tickets   TicketTaker
	sms       SMSSender
	log       *zap.Logger
	maxTrial  int
	now       func() time.Time
	withTx    func(context.Context, func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool      *pgxpool.Pool
	Matchings MatchingStore
	Teams     TeamReader
	Users     UserReader
	Tickets   TicketTaker
	SMS       SMSSender
	Logger    *zap.Logger
	MaxTrial  int
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		matchings: deps.Matchings,
		teams:     deps.Teams,
		users:     deps.Users,
		tickets:   deps.Tickets,
		sms:       deps.SMS,
		log:       log,
		maxTrial:  deps.MaxTrial,
		now:       time.Now,
		withTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
	}
}

// Side is one team's view of a matching as shown on the matching page.
type Side struct {
	Team       model.Team
	IsAccepted *bool
	Status     enums.MatchingStatus
}

type Detail struct {
	Matching model.Matching
	Male     Side
	Female   Side
	Deadline time.Time
}

// GetDetail loads a matching with both teams and each side's derived status.
func (s *Service) GetDetail(ctx context.Context, matchingID int64) (Detail, error) {
	if matchingID <= 0 {
		return Detail{}, ErrValidation
	}

	matching, err := s.matchings.GetByID(ctx, matchingID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchingNotFound) {
			return Detail{}, ErrMatchingNotFound
		}
		return Detail{}, fmt.Errorf("get matching: %w", err)
	}

	maleTeam, err := s.teams.GetByID(ctx, matching.MaleTeamID)
	if err != nil {
		return Detail{}, fmt.Errorf("get male team: %w", err)
	}
	femaleTeam, err := s.teams.GetByID(ctx, matching.FemaleTeamID)
	if err != nil {
		return Detail{}, fmt.Errorf("get female team: %w", err)
	}

	now := s.now()
	return Detail{
		Matching: matching,
		Male: Side{
			Team:       maleTeam,
			IsAccepted: matching.MaleTeamIsAccepted,
			Status:     rules.ResolveMatchingStatus(&maleTeam, &matching, now, s.maxTrial),
		},
		Female: Side{
			Team:       femaleTeam,
			IsAccepted: matching.FemaleTeamIsAccepted,
			Status:     rules.ResolveMatchingStatus(&femaleTeam, &matching, now, s.maxTrial),
		},
		Deadline: matching.CreatedAt.Add(rules.AcceptWindow),
	}, nil
}

// Accept records the caller's team accepting its matching. The acceptance
// spends one ticket; flag and ticket move together in one transaction.
func (s *Service) Accept(ctx context.Context, userID, matchingID int64) error {
	matching, isMale, err := s.guardResponse(ctx, userID, matchingID)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		ticket, err := s.tickets.Take(txCtx, tx, userID)
		if err != nil {
			if errors.Is(err, tickets.ErrNoTicket) {
				return ErrNoTicket
			}
			return err
		}
		return s.matchings.AcceptSide(txCtx, tx, matching.ID, isMale, ticket.ID)
	})
}

// Refuse records the caller's team refusing its matching. If the partner
// already accepted, their spent ticket is returned and they get a text.
func (s *Service) Refuse(ctx context.Context, userID, matchingID int64) error {
	matching, isMale, err := s.guardResponse(ctx, userID, matchingID)
	if err != nil {
		return err
	}

	_, partnerFlag, partnerTicketID := sideState(&matching, !isMale)

	err = s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		if err := s.matchings.RefuseSide(txCtx, tx, matching.ID, isMale); err != nil {
			return err
		}
		if partnerFlag != nil && *partnerFlag && partnerTicketID != nil {
			if err := s.tickets.Refund(txCtx, tx, *partnerTicketID); err != nil {
				return err
			}
			return s.matchings.ClearSideTicket(txCtx, tx, matching.ID, !isMale)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if partnerFlag != nil && *partnerFlag {
		s.notifyPartnerRefused(ctx, &matching, isMale)
	}
	return nil
}

// SubmitRefuseReason stores a free-form reason after a refusal.
func (s *Service) SubmitRefuseReason(ctx context.Context, userID, matchingID int64, reason string) error {
	if !validate.Required(reason) {
		return ErrValidation
	}

	matching, err := s.matchings.GetByID(ctx, matchingID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchingNotFound) {
			return ErrMatchingNotFound
		}
		return fmt.Errorf("get matching: %w", err)
	}

	teamID, err := s.callerTeamID(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := matching.SideOf(teamID); !ok {
		return ErrNotYourTeam
	}

	if err := s.matchings.CreateRefuseReason(ctx, matching.ID, teamID, reason); err != nil {
		return fmt.Errorf("create refuse reason: %w", err)
	}
	return nil
}

// MarkChatCreated records that the operator opened the chat room for a
// mutually accepted matching.
func (s *Service) MarkChatCreated(ctx context.Context, matchingID int64) error {
	if matchingID <= 0 {
		return ErrValidation
	}
	if err := s.matchings.SetChatCreatedAt(ctx, matchingID, s.now().UTC()); err != nil {
		if errors.Is(err, pgrepo.ErrMatchingNotFound) {
			return ErrMatchingNotFound
		}
		return fmt.Errorf("set chat created: %w", err)
	}
	return nil
}

// CreatePairing pairs a male team with a female team. Operators pick the
// pair; nothing here scores or ranks candidates.
func (s *Service) CreatePairing(ctx context.Context, maleTeamID, femaleTeamID int64) (model.Matching, error) {
	if maleTeamID <= 0 || femaleTeamID <= 0 || maleTeamID == femaleTeamID {
		return model.Matching{}, ErrValidation
	}

	male, err := s.pairableTeam(ctx, maleTeamID)
	if err != nil {
		return model.Matching{}, err
	}
	female, err := s.pairableTeam(ctx, femaleTeamID)
	if err != nil {
		return model.Matching{}, err
	}
	if male.Gender != enums.TeamGenderMale || female.Gender != enums.TeamGenderFemale {
		return model.Matching{}, ErrGenderMismatch
	}

	matching, err := s.matchings.Create(ctx, maleTeamID, femaleTeamID)
	if err != nil {
		return model.Matching{}, fmt.Errorf("create matching: %w", err)
	}
	return matching, nil
}

func (s *Service) pairableTeam(ctx context.Context, teamID int64) (model.Team, error) {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrTeamNotFound) {
			return model.Team{}, ErrTeamNotFound
		}
		return model.Team{}, fmt.Errorf("get team: %w", err)
	}
	if team.DeletedAt != nil {
		return model.Team{}, ErrTeamNotFound
	}

	activeID, err := s.matchings.GetIDByTeamID(ctx, teamID)
	if err != nil {
		return model.Team{}, fmt.Errorf("get active matching: %w", err)
	}
	if activeID != 0 {
		return model.Team{}, ErrTeamMatched
	}
	return team, nil
}

// Delete soft-deletes a matching and returns any spent tickets. Operator
// action for broken pairings.
func (s *Service) Delete(ctx context.Context, matchingID int64) error {
	if matchingID <= 0 {
		return ErrValidation
	}

	matching, err := s.matchings.GetByID(ctx, matchingID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchingNotFound) {
			return ErrMatchingNotFound
		}
		return fmt.Errorf("get matching: %w", err)
	}

	return s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		for _, isMale := range []bool{true, false} {
			_, flag, ticketID := sideState(&matching, isMale)
			if flag != nil && *flag && ticketID != nil {
				if err := s.tickets.Refund(txCtx, tx, *ticketID); err != nil {
					return err
				}
				if err := s.matchings.ClearSideTicket(txCtx, tx, matching.ID, isMale); err != nil {
					return err
				}
			}
		}
		return s.matchings.SoftDelete(txCtx, tx, matching.ID, s.now().UTC())
	})
}

func (s *Service) guardResponse(ctx context.Context, userID, matchingID int64) (model.Matching, bool, error) {
	if userID <= 0 || matchingID <= 0 {
		return model.Matching{}, false, ErrValidation
	}

	matching, err := s.matchings.GetByID(ctx, matchingID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchingNotFound) {
			return model.Matching{}, false, ErrMatchingNotFound
		}
		return model.Matching{}, false, fmt.Errorf("get matching: %w", err)
	}
	if matching.DeletedAt != nil {
		return model.Matching{}, false, ErrMatchingNotFound
	}

	teamID, err := s.callerTeamID(ctx, userID)
	if err != nil {
		return model.Matching{}, false, err
	}
	isMale, ok := matching.SideOf(teamID)
	if !ok {
		return model.Matching{}, false, ErrNotYourTeam
	}

	ourFlag, _, _ := matching.FlagsFor(teamID)
	if ourFlag != nil {
		return model.Matching{}, false, ErrAlreadyResponded
	}
	if !s.now().Before(matching.CreatedAt.Add(rules.AcceptWindow)) {
		return model.Matching{}, false, ErrWindowExpired
	}
	return matching, isMale, nil
}

func (s *Service) callerTeamID(ctx context.Context, userID int64) (int64, error) {
	teamID, err := s.teams.GetIDByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get caller team: %w", err)
	}
	if teamID == 0 {
		return 0, ErrNotYourTeam
	}
	return teamID, nil
}

// notifyPartnerRefused texts the refused partner's team owner. Delivery is
// best effort and never fails the refusal itself.
func (s *Service) notifyPartnerRefused(ctx context.Context, matching *model.Matching, refuserIsMale bool) {
	partnerTeamID := matching.FemaleTeamID
	if !refuserIsMale {
		partnerTeamID = matching.MaleTeamID
	}

	team, err := s.teams.GetByID(ctx, partnerTeamID)
	if err != nil {
		s.log.Warn("refusal sms skipped, partner team lookup failed",
			zap.Int64("matching_id", matching.ID),
			zap.Int64("team_id", partnerTeamID),
			zap.Error(err))
		return
	}
	owner, err := s.users.GetByID(ctx, team.UserID)
	if err != nil {
		s.log.Warn("refusal sms skipped, owner lookup failed",
			zap.Int64("matching_id", matching.ID),
			zap.Int64("user_id", team.UserID),
			zap.Error(err))
		return
	}

	content := "아쉽게도 상대 팀이 매칭을 거절했어요. 사용하신 이용권은 돌려드렸으니 다시 매칭에 도전해 보세요!"
	if err := s.sms.Send(ctx, enums.SMSTypeLMS, enums.SMSContentComm, owner.Phone, content, "미팅학개론"); err != nil {
		s.log.Warn("refusal sms send failed",
			zap.Int64("matching_id", matching.ID),
			zap.String("phone", owner.Phone),
			zap.Error(err))
	}
}

func sideState(m *model.Matching, isMale bool) (teamID int64, flag *bool, ticketID *int64) {
	if isMale {
		return m.MaleTeamID, m.MaleTeamIsAccepted, m.MaleTeamTicketID
	}
	return m.FemaleTeamID, m.FemaleTeamIsAccepted, m.FemaleTeamTicketID
}
