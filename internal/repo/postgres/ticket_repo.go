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

type TicketRepo struct {
	pool *pgxpool.Pool
}

func NewTicketRepo(pool *pgxpool.Pool) *TicketRepo {
	return &TicketRepo{pool: pool}
}

const ticketColumns = `id, user_id, order_id, used_at, refunded_at, created_at`

func scanTicket(row pgx.Row) (model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(&t.ID, &t.UserID, &t.OrderID, &t.UsedAt, &t.RefundedAt, &t.CreatedAt)
	return t, err
}

// CreateForOrder mints count tickets for an order inside the given tx.
func (r *TicketRepo) CreateForOrder(ctx context.Context, tx pgx.Tx, userID, orderID int64, count int) error {
	if userID <= 0 || orderID <= 0 || count <= 0 {
		return fmt.Errorf("invalid ticket payload")
	}

	for i := 0; i < count; i++ {
		if _, err := tx.Exec(ctx, `
INSERT INTO tickets (user_id, order_id, created_at)
VALUES ($1, $2, NOW())
`, userID, orderID); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
	}
	return nil
}

func (r *TicketRepo) CountUsableByUserID(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM tickets
WHERE user_id = $1 AND used_at IS NULL
`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usable tickets: %w", err)
	}
	return count, nil
}

// TakeOldestUsable consumes the user's oldest unused ticket and returns it.
// The conditional UPDATE keeps two concurrent accepts from spending the
// same ticket.
func (r *TicketRepo) TakeOldestUsable(ctx context.Context, tx pgx.Tx, userID int64, now time.Time) (model.Ticket, error) {
	row := tx.QueryRow(ctx, `
UPDATE tickets
SET used_at = $2
WHERE id = (
	SELECT id
	FROM tickets
	WHERE user_id = $1 AND used_at IS NULL
	ORDER BY created_at, id
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING `+ticketColumns+`
`, userID, now)

	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Ticket{}, ErrTicketNotFound
		}
		return model.Ticket{}, fmt.Errorf("take usable ticket: %w", err)
	}
	return ticket, nil
}

// Refund returns a spent ticket to the user's balance and stamps the refund.
func (r *TicketRepo) Refund(ctx context.Context, tx pgx.Tx, ticketID int64, now time.Time) error {
	tag, err := tx.Exec(ctx, `
UPDATE tickets
SET used_at = NULL, refunded_at = $2
WHERE id = $1 AND used_at IS NOT NULL
`, ticketID, now)
	if err != nil {
		return fmt.Errorf("refund ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, ticketID int64) (model.Ticket, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+ticketColumns+`
FROM tickets
WHERE id = $1
`, ticketID)

	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Ticket{}, ErrTicketNotFound
		}
		return model.Ticket{}, fmt.Errorf("get ticket by id: %w", err)
	}
	return ticket, nil
}
