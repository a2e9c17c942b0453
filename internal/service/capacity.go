package service

import (
	"context"
	"errors"

	"github.com/iliyamo/cinema-admin/internal/model"
	"github.com/iliyamo/cinema-admin/internal/repository"
)

// CapacityRowStore is the capacity row repository as CapacityService
// uses it.
type CapacityRowStore interface {
	GetForUpdate(ctx context.Context, id string) (*model.Ticket, error)
	ExistsForShowtime(ctx context.Context, showtimeID, excludeID string) (bool, error)
	Create(ctx context.Context, t *model.Ticket) error
	Update(ctx context.Context, t *model.Ticket) error
}

// CapacityService creates and edits the capacity row of a showtime.
// Every edit keeps the seat count at or above the seats held by
// completed sales.
type CapacityService struct {
	Rows         CapacityRowStore
	Transactions TransactionStore
	Showtimes    ShowtimeGetter
}

// Create adds the capacity row of t.ShowtimeID.  A showtime has at most
// one row.
func (s *CapacityService) Create(ctx context.Context, t *model.Ticket) error {
	return s.Transactions.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.Showtimes.Get(ctx, t.ShowtimeID); err != nil {
			return err
		}
		if err := s.checkFree(ctx, t.ShowtimeID, ""); err != nil {
			return err
		}
		if err := s.checkSold(ctx, t.ShowtimeID, t.Seat); err != nil {
			return err
		}
		return duplicateAsExists(s.Rows.Create(ctx, t))
	})
}

// Update overwrites showtime, seat count and price of the row t.ID.  The
// row is locked first, so no sale for its showtime can commit between
// the sold-seat check and the write.  A row with completed sales stays
// on its showtime.
func (s *CapacityService) Update(ctx context.Context, t *model.Ticket) error {
	return s.Transactions.WithTx(ctx, func(ctx context.Context) error {
		cur, err := s.Rows.GetForUpdate(ctx, t.ID)
		if err != nil {
			return err
		}
		if _, err := s.Showtimes.Get(ctx, t.ShowtimeID); err != nil {
			return err
		}
		if t.ShowtimeID != cur.ShowtimeID {
			sold, err := s.Transactions.SumCompletedSeats(ctx, cur.ShowtimeID)
			if err != nil {
				return err
			}
			if sold > 0 {
				return ErrTicketHasSales
			}
			if err := s.checkFree(ctx, t.ShowtimeID, t.ID); err != nil {
				return err
			}
		}
		if err := s.checkSold(ctx, t.ShowtimeID, t.Seat); err != nil {
			return err
		}
		return duplicateAsExists(s.Rows.Update(ctx, t))
	})
}

func (s *CapacityService) checkFree(ctx context.Context, showtimeID, excludeID string) error {
	exists, err := s.Rows.ExistsForShowtime(ctx, showtimeID, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrTicketExists
	}
	return nil
}

func (s *CapacityService) checkSold(ctx context.Context, showtimeID string, seats int) error {
	sold, err := s.Transactions.SumCompletedSeats(ctx, showtimeID)
	if err != nil {
		return err
	}
	if sold > seats {
		return ErrSeatsBelowSold
	}
	return nil
}

// duplicateAsExists maps the unique index on tickets.showtime_id, hit by
// a concurrent create, to the same error the explicit check returns.
func duplicateAsExists(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrTicketExists
	}
	return err
}
