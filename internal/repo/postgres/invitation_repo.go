package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
)

type InvitationRepo struct {
	pool *pgxpool.Pool
}

func NewInvitationRepo(pool *pgxpool.Pool) *InvitationRepo {
	return &InvitationRepo{pool: pool}
}

func (r *InvitationRepo) Create(ctx context.Context, inviterUserID, inviteeUserID int64) (model.Invitation, error) {
	if inviterUserID <= 0 || inviteeUserID <= 0 || inviterUserID == inviteeUserID {
		return model.Invitation{}, fmt.Errorf("invalid invitation payload")
	}

	var inv model.Invitation
	err := r.pool.QueryRow(ctx, `
INSERT INTO invitations (inviter_user_id, invitee_user_id, created_at)
VALUES ($1, $2, NOW())
RETURNING id, inviter_user_id, invitee_user_id, created_at, deleted_at
`, inviterUserID, inviteeUserID).Scan(&inv.ID, &inv.InviterUserID, &inv.InviteeUserID, &inv.CreatedAt, &inv.DeletedAt)
	if err != nil {
		return model.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}
	return inv, nil
}

// ExistsForInvitee reports whether the user already redeemed a code; each
// user may be invited at most once.
func (r *InvitationRepo) ExistsForInvitee(ctx context.Context, inviteeUserID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM invitations WHERE invitee_user_id = $1
)
`, inviteeUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invitation exists: %w", err)
	}
	return exists, nil
}

func (r *InvitationRepo) CountByInviter(ctx context.Context, inviterUserID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM invitations
WHERE inviter_user_id = $1 AND deleted_at IS NULL
`, inviterUserID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invitations: %w", err)
	}
	return count, nil
}

// CountByInviterWithDeleted includes soft-deleted rows, for admin stats.
func (r *InvitationRepo) CountByInviterWithDeleted(ctx context.Context, inviterUserID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM invitations
WHERE inviter_user_id = $1
`, inviterUserID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invitations with deleted: %w", err)
	}
	return count, nil
}
