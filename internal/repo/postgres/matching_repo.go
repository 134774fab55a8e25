package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
)

type MatchingRepo struct {
	pool *pgxpool.Pool
}

func NewMatchingRepo(pool *pgxpool.Pool) *MatchingRepo {
	return &MatchingRepo{pool: pool}
}

const matchingColumns = `id, male_team_id, female_team_id, male_team_is_accepted, female_team_is_accepted,
	male_team_ticket_id, female_team_ticket_id, chat_created_at, created_at, deleted_at`

func scanMatching(row pgx.Row) (model.Matching, error) {
	var m model.Matching
	err := row.Scan(
		&m.ID,
		&m.MaleTeamID,
		&m.FemaleTeamID,
		&m.MaleTeamIsAccepted,
		&m.FemaleTeamIsAccepted,
		&m.MaleTeamTicketID,
		&m.FemaleTeamTicketID,
		&m.ChatCreatedAt,
		&m.CreatedAt,
		&m.DeletedAt,
	)
	return m, err
}

// GetByTeamID returns the matching where the team appears on either side.
// Soft-deleted rows are included: the status resolver still has to explain
// why a team has no active match. A (nil, nil) return means the team was
// never paired.
func (r *MatchingRepo) GetByTeamID(ctx context.Context, teamID int64) (*model.Matching, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+matchingColumns+`
FROM matchings
WHERE male_team_id = $1 OR female_team_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1
`, teamID)

	m, err := scanMatching(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get matching by team id: %w", err)
	}
	return &m, nil
}

// GetByID fetches a matching, soft-deleted included, for operational views.
func (r *MatchingRepo) GetByID(ctx context.Context, matchingID int64) (model.Matching, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+matchingColumns+`
FROM matchings
WHERE id = $1
`, matchingID)

	m, err := scanMatching(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Matching{}, ErrMatchingNotFound
		}
		return model.Matching{}, fmt.Errorf("get matching by id: %w", err)
	}
	return m, nil
}

// GetIDByTeamID returns the active matching id for a team, 0 when none.
func (r *MatchingRepo) GetIDByTeamID(ctx context.Context, teamID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
SELECT id
FROM matchings
WHERE (male_team_id = $1 OR female_team_id = $1) AND deleted_at IS NULL
LIMIT 1
`, teamID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get matching id by team id: %w", err)
	}
	return id, nil
}

// Create pairs two teams. One active matching per team per round is
// enforced by a partial unique index; a conflict maps to an error here.
func (r *MatchingRepo) Create(ctx context.Context, maleTeamID, femaleTeamID int64) (model.Matching, error) {
	if maleTeamID <= 0 || femaleTeamID <= 0 {
		return model.Matching{}, fmt.Errorf("invalid matching payload")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO matchings (male_team_id, female_team_id, created_at)
VALUES ($1, $2, NOW())
RETURNING `+matchingColumns+`
`, maleTeamID, femaleTeamID)

	m, err := scanMatching(row)
	if err != nil {
		return model.Matching{}, fmt.Errorf("create matching: %w", err)
	}
	return m, nil
}

// AcceptSide marks one side accepted and records the ticket it spent. Each
// side's update touches only that side's columns, so concurrent responses
// from the two teams never conflict.
func (r *MatchingRepo) AcceptSide(ctx context.Context, tx pgx.Tx, matchingID int64, isMale bool, ticketID int64) error {
	column, ticketColumn := sideColumns(isMale)
	tag, err := tx.Exec(ctx, `
UPDATE matchings
SET `+column+` = TRUE, `+ticketColumn+` = $2
WHERE id = $1 AND deleted_at IS NULL
`, matchingID, ticketID)
	if err != nil {
		return fmt.Errorf("accept matching side: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMatchingNotFound
	}
	return nil
}

// RefuseSide marks one side refused.
func (r *MatchingRepo) RefuseSide(ctx context.Context, tx pgx.Tx, matchingID int64, isMale bool) error {
	column, _ := sideColumns(isMale)
	tag, err := tx.Exec(ctx, `
UPDATE matchings
SET `+column+` = FALSE
WHERE id = $1 AND deleted_at IS NULL
`, matchingID)
	if err != nil {
		return fmt.Errorf("refuse matching side: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMatchingNotFound
	}
	return nil
}

// ClearSideTicket drops the ticket back-reference after a refund.
func (r *MatchingRepo) ClearSideTicket(ctx context.Context, tx pgx.Tx, matchingID int64, isMale bool) error {
	_, ticketColumn := sideColumns(isMale)
	if _, err := tx.Exec(ctx, `
UPDATE matchings
SET `+ticketColumn+` = NULL
WHERE id = $1
`, matchingID); err != nil {
		return fmt.Errorf("clear matching side ticket: %w", err)
	}
	return nil
}

func (r *MatchingRepo) SetChatCreatedAt(ctx context.Context, matchingID int64, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE matchings
SET chat_created_at = $2
WHERE id = $1 AND deleted_at IS NULL
`, matchingID, now)
	if err != nil {
		return fmt.Errorf("set chat created at: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMatchingNotFound
	}
	return nil
}

func (r *MatchingRepo) SoftDelete(ctx context.Context, tx pgx.Tx, matchingID int64, now time.Time) error {
	tag, err := tx.Exec(ctx, `
UPDATE matchings
SET deleted_at = $2
WHERE id = $1 AND deleted_at IS NULL
`, matchingID, now)
	if err != nil {
		return fmt.Errorf("soft delete matching: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMatchingNotFound
	}
	return nil
}

type SucceededMatchingRecord struct {
	MatchingID    int64
	MaleTeamID    int64
	FemaleTeamID  int64
	MatchedAt     time.Time
	ChatIsCreated bool
}

// ListSucceeded lists mutual-accept matchings that are not soft-deleted;
// teams that later withdrew still show up (joins stay on raw team ids).
func (r *MatchingRepo) ListSucceeded(ctx context.Context) ([]SucceededMatchingRecord, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, male_team_id, female_team_id, created_at, chat_created_at IS NOT NULL
FROM matchings
WHERE male_team_is_accepted = TRUE
	AND female_team_is_accepted = TRUE
	AND deleted_at IS NULL
ORDER BY created_at DESC, id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list succeeded matchings: %w", err)
	}
	defer rows.Close()

	var items []SucceededMatchingRecord
	for rows.Next() {
		var item SucceededMatchingRecord
		if err := rows.Scan(&item.MatchingID, &item.MaleTeamID, &item.FemaleTeamID, &item.MatchedAt, &item.ChatIsCreated); err != nil {
			return nil, fmt.Errorf("scan succeeded matching: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate succeeded matchings: %w", rows.Err())
	}

	return items, nil
}

// ListExpiredHoldingTickets returns matchings created before the cutoff
// that never reached mutual accept but still hold a spent ticket on at
// least one side.
func (r *MatchingRepo) ListExpiredHoldingTickets(ctx context.Context, cutoff time.Time) ([]model.Matching, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+matchingColumns+`
FROM matchings
WHERE created_at < $1
	AND deleted_at IS NULL
	AND NOT (male_team_is_accepted = TRUE AND female_team_is_accepted = TRUE)
	AND (male_team_ticket_id IS NOT NULL OR female_team_ticket_id IS NOT NULL)
ORDER BY created_at, id
`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired matchings: %w", err)
	}
	defer rows.Close()

	var items []model.Matching
	for rows.Next() {
		m, err := scanMatching(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expired matching: %w", err)
		}
		items = append(items, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate expired matchings: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchingRepo) CreateRefuseReason(ctx context.Context, matchingID, teamID int64, reason string) error {
	if _, err := r.pool.Exec(ctx, `
INSERT INTO matching_refuse_reasons (matching_id, team_id, reason, created_at)
VALUES ($1, $2, $3, NOW())
`, matchingID, teamID, reason); err != nil {
		return fmt.Errorf("create refuse reason: %w", err)
	}
	return nil
}

func sideColumns(isMale bool) (flagColumn, ticketColumn string) {
	if isMale {
		return "male_team_is_accepted", "male_team_ticket_id"
	}
	return "female_team_is_accepted", "female_team_ticket_id"
}
