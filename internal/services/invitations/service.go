package invitations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrCodeNotFound    = errors.New("referral code not found")
	ErrSelfInvitation  = errors.New("cannot redeem own referral code")
	ErrAlreadyRedeemed = errors.New("user already redeemed a referral code")
)

// RewardThreshold is how many signed-up friends earn the inviter one free
// ticket coupon.
const RewardThreshold = 3

// FreeCouponTypeID is the 100% discount coupon type in the catalog.
const FreeCouponTypeID = 2

type InvitationStore interface {
	Create(ctx context.Context, inviterUserID, inviteeUserID int64) (model.Invitation, error)
	ExistsForInvitee(ctx context.Context, inviteeUserID int64) (bool, error)
	CountByInviter(ctx context.Context, inviterUserID int64) (int, error)
	CountByInviterWithDeleted(ctx context.Context, inviterUserID int64) (int, error)
}

type UserReader interface {
	GetByReferralID(ctx context.Context, referralID string) (model.User, error)
}

type CouponGranter interface {
	Grant(ctx context.Context, userID, typeID int64, expiresAt *time.Time) (model.Coupon, error)
}

type Service struct {
	invitations InvitationStore
	users       UserReader
	coupons     CouponGranter
	log         *zap.Logger
}

type Dependencies struct {
	Invitations InvitationStore
	Users       UserReader
	Coupons     CouponGranter
	Logger      *zap.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		invitations: deps.Invitations,
		users:       deps.Users,
		coupons:     deps.Coupons,
		log:         log,
	}
}

// Redeem records that a new user signed up through someone's referral code.
// Every third redeemed invitation grants the inviter a free ticket coupon.
// Deleted invitee accounts still count toward the threshold so the reward
// cannot be farmed by cycling accounts.
func (s *Service) Redeem(ctx context.Context, inviteeUserID int64, referralCode string) (model.Invitation, error) {
	if inviteeUserID <= 0 || referralCode == "" {
		return model.Invitation{}, ErrValidation
	}

	inviter, err := s.users.GetByReferralID(ctx, referralCode)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.Invitation{}, ErrCodeNotFound
		}
		return model.Invitation{}, fmt.Errorf("lookup referral code: %w", err)
	}
	if inviter.ID == inviteeUserID {
		return model.Invitation{}, ErrSelfInvitation
	}

	redeemed, err := s.invitations.ExistsForInvitee(ctx, inviteeUserID)
	if err != nil {
		return model.Invitation{}, fmt.Errorf("check invitee: %w", err)
	}
	if redeemed {
		return model.Invitation{}, ErrAlreadyRedeemed
	}

	invitation, err := s.invitations.Create(ctx, inviter.ID, inviteeUserID)
	if err != nil {
		return model.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}

	total, err := s.invitations.CountByInviterWithDeleted(ctx, inviter.ID)
	if err != nil {
		return model.Invitation{}, fmt.Errorf("count invitations: %w", err)
	}
	if total > 0 && total%RewardThreshold == 0 {
		if _, err := s.coupons.Grant(ctx, inviter.ID, FreeCouponTypeID, nil); err != nil {
			s.log.Error("invitation reward coupon grant failed",
				zap.Int64("inviter_user_id", inviter.ID),
				zap.Int("invitation_count", total),
				zap.Error(err))
		}
	}

	return invitation, nil
}

func (s *Service) CountByInviter(ctx context.Context, inviterUserID int64) (int, error) {
	if inviterUserID <= 0 {
		return 0, ErrValidation
	}
	count, err := s.invitations.CountByInviter(ctx, inviterUserID)
	if err != nil {
		return 0, fmt.Errorf("count invitations: %w", err)
	}
	return count, nil
}
