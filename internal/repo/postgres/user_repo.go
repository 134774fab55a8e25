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

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, kakao_uid, nickname, COALESCE(gender, ''), COALESCE(age_range, ''), COALESCE(phone, ''), referral_id, role, created_at, deleted_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.KakaoUID,
		&u.Nickname,
		&u.Gender,
		&u.AgeRange,
		&u.Phone,
		&u.ReferralID,
		&u.Role,
		&u.CreatedAt,
		&u.DeletedAt,
	)
	return u, err
}

func (r *UserRepo) Create(ctx context.Context, kakaoUID int64, nickname, referralID string) (model.User, error) {
	if kakaoUID <= 0 {
		return model.User{}, fmt.Errorf("invalid kakao uid")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO users (kakao_uid, nickname, referral_id, role, created_at)
VALUES ($1, $2, $3, 'user', NOW())
RETURNING `+userColumns+`
`, kakaoUID, nickname, referralID)

	user, err := scanUser(row)
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE id = $1 AND deleted_at IS NULL
`, userID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByKakaoUID(ctx context.Context, kakaoUID int64) (model.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE kakao_uid = $1 AND deleted_at IS NULL
`, kakaoUID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by kakao uid: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByReferralID(ctx context.Context, referralID string) (model.User, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+userColumns+`
FROM users
WHERE referral_id = $1 AND deleted_at IS NULL
`, referralID)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by referral id: %w", err)
	}
	return user, nil
}

func (r *UserRepo) UpdatePhone(ctx context.Context, userID int64, phone string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET phone = $2 WHERE id = $1 AND deleted_at IS NULL
`, userID, phone)
	if err != nil {
		return fmt.Errorf("update user phone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) UpdateGender(ctx context.Context, userID int64, gender string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET gender = $2 WHERE id = $1 AND deleted_at IS NULL
`, userID, gender)
	if err != nil {
		return fmt.Errorf("update user gender: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) UpdateAgeRange(ctx context.Context, userID int64, ageRange string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET age_range = $2 WHERE id = $1 AND deleted_at IS NULL
`, userID, ageRange)
	if err != nil {
		return fmt.Errorf("update user age range: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, userID int64, now time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL
`, userID, now)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+userColumns+`
FROM users
WHERE deleted_at IS NULL
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}

	return users, nil
}
