package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MoonGyu1/Meetinghakgaeron/internal/domain/model"
	pgrepo "github.com/MoonGyu1/Meetinghakgaeron/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNoTicket   = errors.New("no usable ticket")
)

type TicketStore interface {
	CreateForOrder(ctx context.Context, tx pgx.Tx, userID, orderID int64, count int) error
	CountUsableByUserID(ctx context.Context, userID int64) (int, error)
	TakeOldestUsable(ctx context.Context, tx pgx.Tx, userID int64, now time.Time) (model.Ticket, error)
	Refund(ctx context.Context, tx pgx.Tx, ticketID int64, now time.Time) error
}

type Service struct {
	tickets TicketStore
	now     func() time.Time
}

func NewService(tickets TicketStore) *Service {
	return &Service{
		tickets: tickets,
		now:     time.Now,
	}
}

func (s *Service) CountByUserID(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	count, err := s.tickets.CountUsableByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}

// Take consumes the user's oldest unused ticket inside the caller's tx.
func (s *Service) Take(ctx context.Context, tx pgx.Tx, userID int64) (model.Ticket, error) {
	if userID <= 0 {
		return model.Ticket{}, ErrValidation
	}

	ticket, err := s.tickets.TakeOldestUsable(ctx, tx, userID, s.now().UTC())
	if err != nil {
		if errors.Is(err, pgrepo.ErrTicketNotFound) {
			return model.Ticket{}, ErrNoTicket
		}
		return model.Ticket{}, fmt.Errorf("take ticket: %w", err)
	}
	return ticket, nil
}

// Refund returns a spent ticket, e.g. after the partner team refused.
func (s *Service) Refund(ctx context.Context, tx pgx.Tx, ticketID int64) error {
	if ticketID <= 0 {
		return ErrValidation
	}
	if err := s.tickets.Refund(ctx, tx, ticketID, s.now().UTC()); err != nil {
		return fmt.Errorf("refund ticket: %w", err)
	}
	return nil
}

// MintForOrder creates the tickets an order paid for.
func (s *Service) MintForOrder(ctx context.Context, tx pgx.Tx, userID, orderID int64, count int) error {
	if userID <= 0 || orderID <= 0 || count <= 0 {
		return ErrValidation
	}
	if err := s.tickets.CreateForOrder(ctx, tx, userID, orderID, count); err != nil {
		return fmt.Errorf("mint tickets: %w", err)
	}
	return nil
}
