package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/enums"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
)

type TeamRepo struct {
	pool *pgxpool.Pool
}

func NewTeamRepo(pool *pgxpool.Pool) *TeamRepo {
	return &TeamRepo{pool: pool}
}

type CreateTeamParams struct {
	UserID             int64
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

const teamColumns = `id, user_id, gender, member_count, universities, areas, intro, drink,
	pref_same_university, pref_age_min, pref_age_max, start_round, current_round, created_at, deleted_at`

func scanTeam(row pgx.Row) (model.Team, error) {
	var t model.Team
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Gender,
		&t.MemberCount,
		&t.Universities,
		&t.Areas,
		&t.Intro,
		&t.Drink,
		&t.PrefSameUniversity,
		&t.PrefAgeMin,
		&t.PrefAgeMax,
		&t.StartRound,
		&t.CurrentRound,
		&t.CreatedAt,
		&t.DeletedAt,
	)
	return t, err
}

// Create inserts the team together with its members and available dates in
// one transaction.
func (r *TeamRepo) Create(ctx context.Context, params CreateTeamParams) (int64, error) {
	if params.UserID <= 0 || !params.Gender.Valid() {
		return 0, fmt.Errorf("invalid team payload")
	}
	if params.MemberCount != 2 && params.MemberCount != 3 {
		return 0, fmt.Errorf("member count must be 2 or 3")
	}

	var teamID int64
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(txCtx, `
INSERT INTO teams (
	user_id, gender, member_count, universities, areas, intro, drink,
	pref_same_university, pref_age_min, pref_age_max, start_round, current_round, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11, NOW())
RETURNING id
`,
			params.UserID,
			params.Gender,
			params.MemberCount,
			params.Universities,
			params.Areas,
			params.Intro,
			params.Drink,
			params.PrefSameUniversity,
			params.PrefAgeMin,
			params.PrefAgeMax,
			params.StartRound,
		).Scan(&teamID)
		if err != nil {
			return fmt.Errorf("insert team: %w", err)
		}

		for _, member := range params.Members {
			if _, err := tx.Exec(txCtx, `
INSERT INTO team_members (team_id, age, mbti, role, vibe)
VALUES ($1, $2, $3, $4, $5)
`, teamID, member.Age, member.Mbti, member.Role, member.Vibe); err != nil {
				return fmt.Errorf("insert team member: %w", err)
			}
		}

		for _, date := range params.AvailableDates {
			if _, err := tx.Exec(txCtx, `
INSERT INTO team_available_dates (team_id, date)
VALUES ($1, $2)
`, teamID, date); err != nil {
				return fmt.Errorf("insert team available date: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return teamID, nil
}

// GetByID returns the team row, soft-deleted teams included.
func (r *TeamRepo) GetByID(ctx context.Context, teamID int64) (model.Team, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+teamColumns+`
FROM teams
WHERE id = $1
`, teamID)

	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Team{}, ErrTeamNotFound
		}
		return model.Team{}, fmt.Errorf("get team by id: %w", err)
	}
	return team, nil
}

// GetIDByUserID returns the user's active team id, or 0 when the user has
// no live team. Absence is a valid state, not an error.
func (r *TeamRepo) GetIDByUserID(ctx context.Context, userID int64) (int64, error) {
	var teamID int64
	err := r.pool.QueryRow(ctx, `
SELECT id
FROM teams
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY id DESC
LIMIT 1
`, userID).Scan(&teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get team id by user id: %w", err)
	}
	return teamID, nil
}

// ListByUserID returns all teams the user ever created, soft-deleted rows
// included, newest first.
func (r *TeamRepo) ListByUserID(ctx context.Context, userID int64) ([]model.Team, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+teamColumns+`
FROM teams
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams by user id: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate teams: %w", rows.Err())
	}

	return teams, nil
}

type UpdateTeamParams struct {
	Gender             *enums.TeamGender
	MemberCount        *int
	Universities       []int64
	Areas              []int64
	Intro              *string
	Drink              *int
	PrefSameUniversity *bool
	PrefAgeMin         *int
	PrefAgeMax         *int
}

func (r *TeamRepo) Update(ctx context.Context, teamID int64, params UpdateTeamParams) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE teams SET
	gender = COALESCE($2, gender),
	member_count = COALESCE($3, member_count),
	universities = COALESCE($4, universities),
	areas = COALESCE($5, areas),
	intro = COALESCE($6, intro),
	drink = COALESCE($7, drink),
	pref_same_university = COALESCE($8, pref_same_university),
	pref_age_min = COALESCE($9, pref_age_min),
	pref_age_max = COALESCE($10, pref_age_max)
WHERE id = $1 AND deleted_at IS NULL
`,
		teamID,
		params.Gender,
		params.MemberCount,
		params.Universities,
		params.Areas,
		params.Intro,
		params.Drink,
		params.PrefSameUniversity,
		params.PrefAgeMin,
		params.PrefAgeMax,
	)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (r *TeamRepo) ReplaceAvailableDates(ctx context.Context, teamID int64, dates []time.Time) error {
	return WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(txCtx, `DELETE FROM team_available_dates WHERE team_id = $1`, teamID); err != nil {
			return fmt.Errorf("delete team available dates: %w", err)
		}
		for _, date := range dates {
			if _, err := tx.Exec(txCtx, `
INSERT INTO team_available_dates (team_id, date) VALUES ($1, $2)
`, teamID, date); err != nil {
				return fmt.Errorf("insert team available date: %w", err)
			}
		}
		return nil
	})
}

func (r *TeamRepo) ReplaceMembers(ctx context.Context, teamID int64, members []model.TeamMember) error {
	return WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(txCtx, `DELETE FROM team_members WHERE team_id = $1`, teamID); err != nil {
			return fmt.Errorf("delete team members: %w", err)
		}
		for _, member := range members {
			if _, err := tx.Exec(txCtx, `
INSERT INTO team_members (team_id, age, mbti, role, vibe)
VALUES ($1, $2, $3, $4, $5)
`, teamID, member.Age, member.Mbti, member.Role, member.Vibe); err != nil {
				return fmt.Errorf("insert team member: %w", err)
			}
		}
		return nil
	})
}

func (r *TeamRepo) SoftDelete(ctx context.Context, teamID int64, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE teams SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL
`, teamID, now)
	if err != nil {
		return fmt.Errorf("soft delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

// CountApplied counts active teams without a matching record, grouped by
// member count and gender, for the admin applicant view.
func (r *TeamRepo) CountApplied(ctx context.Context, memberCount int, gender enums.TeamGender) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM teams t
WHERE t.member_count = $1
	AND t.gender = $2
	AND t.deleted_at IS NULL
	AND NOT EXISTS (
		SELECT 1
		FROM matchings m
		WHERE (m.male_team_id = t.id OR m.female_team_id = t.id)
			AND m.deleted_at IS NULL
	)
`, memberCount, gender).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count applied teams: %w", err)
	}
	return count, nil
}

// AdvanceRound bumps current_round for every active unmatched team; the
// admin triggers this when a matching round closes.
func (r *TeamRepo) AdvanceRound(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE teams t
SET current_round = current_round + 1
WHERE t.deleted_at IS NULL
	AND NOT EXISTS (
		SELECT 1
		FROM matchings m
		WHERE (m.male_team_id = t.id OR m.female_team_id = t.id)
			AND m.deleted_at IS NULL
	)
`)
	if err != nil {
		return 0, fmt.Errorf("advance team rounds: %w", err)
	}
	return tag.RowsAffected(), nil
}
