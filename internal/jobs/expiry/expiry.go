// Package expiry sweeps matchings whose accept window closed without a
// conclusion and returns the tickets their accepted sides spent. It is a
// run-to-completion job meant to be triggered from the outside, for
// example by cron.
package expiry

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/rules"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

type MatchingStore interface {
	ListExpiredHoldingTickets(ctx context.Context, cutoff time.Time) ([]model.Matching, error)
	ClearSideTicket(ctx context.Context, tx pgx.Tx, matchingID int64, isMale bool) error
}

type TicketRefunder interface {
	Refund(ctx context.Context, tx pgx.Tx, ticketID int64) error
}

type Job struct {
	matchings MatchingStore
	tickets   TicketRefunder
	window    time.Duration
	withTx    func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
	now       func() time.Time
	logger    *zap.Logger
}

type Dependencies struct {
	Pool      *pgxpool.Pool
	Matchings MatchingStore
	Tickets   TicketRefunder
	Logger    *zap.Logger
}

func NewJob(deps Dependencies) *Job {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		matchings: deps.Matchings,
		tickets:   deps.Tickets,
		window:    rules.AcceptWindow,
		withTx: func(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, deps.Pool, fn)
		},
		now:    time.Now,
		logger: logger,
	}
}

// Run refunds held tickets for every matching past its accept window that
// never reached mutual accept. Refund and back-reference clearing for one
// matching commit together; a failing matching stops the sweep so the next
// run retries it.
func (j *Job) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.window)

	expired, err := j.matchings.ListExpiredHoldingTickets(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list expired matchings: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	refunded := 0
	for _, m := range expired {
		err := j.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
			for _, side := range []struct {
				isMale   bool
				ticketID *int64
			}{
				{isMale: true, ticketID: m.MaleTeamTicketID},
				{isMale: false, ticketID: m.FemaleTeamTicketID},
			} {
				if side.ticketID == nil {
					continue
				}
				if err := j.tickets.Refund(ctx, tx, *side.ticketID); err != nil {
					return fmt.Errorf("refund ticket: %w", err)
				}
				if err := j.matchings.ClearSideTicket(ctx, tx, m.ID, side.isMale); err != nil {
					return err
				}
				refunded++
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("sweep matching %d: %w", m.ID, err)
		}
	}

	j.logger.Info("expired matching sweep completed",
		zap.Int("matchings", len(expired)),
		zap.Int("tickets_refunded", refunded),
	)
	return nil
}
