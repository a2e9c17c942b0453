// Package service coordinates the record store with the booking rules.
// Handlers call services for every operation that needs more than one
// query or a consistency check; plain CRUD goes to the repositories
// directly.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinema-admin/internal/booking"
	"github.com/iliyamo/cinema-admin/internal/model"
	"github.com/iliyamo/cinema-admin/internal/queue"
	"github.com/iliyamo/cinema-admin/internal/repository"
)

// TransactionStore is the part of the transaction repository used for
// bookings.
type TransactionStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, tr *model.Transaction) error
	Get(ctx context.Context, id string) (*model.Transaction, error)
	SumCompletedSeats(ctx context.Context, showtimeID string) (int, error)
	SetStatus(ctx context.Context, id string, status model.TransactionStatus) error
}

// CapacityStore gives locked access to the capacity row of a showtime.
type CapacityStore interface {
	CapacityForUpdate(ctx context.Context, showtimeID string) (*model.Ticket, error)
}

// ShowtimeGetter loads a showtime with its movie.
type ShowtimeGetter interface {
	Get(ctx context.Context, id string) (*model.Showtime, error)
}

// BookingService sells and cancels seats.
type BookingService struct {
	Transactions TransactionStore
	Capacity     CapacityStore
	Showtimes    ShowtimeGetter
	Events       EventPublisher // optional
	Logger       *log.Logger

	// Location defines "today" for TodayOnly.
	Location *time.Location
	// TodayOnly restricts sales to showtimes starting today.
	TodayOnly bool
	Now       func() time.Time
}

// BookRequest is a sale as entered at the box office.
type BookRequest struct {
	ShowtimeID    string
	Seats         int
	PaymentMethod model.PaymentMethod
	CustomerName  string
	CustomerPhone string
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Book records a completed sale.  Reading the capacity row, summing the
// completed seats and inserting the sale happen in one database
// transaction with the capacity row locked, so two concurrent sales for
// the same showtime cannot both pass the availability check.  A rejected
// sale writes nothing.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*model.Transaction, booking.Inventory, error) {
	if req.Seats < booking.MinSeatsPerSale || req.Seats > booking.MaxSeatsPerSale {
		return nil, booking.Inventory{}, booking.ErrSeatRange
	}
	switch req.PaymentMethod {
	case model.PaymentCash, model.PaymentDebit:
	default:
		return nil, booking.Inventory{}, ErrInvalidPayment
	}

	st, err := s.Showtimes.Get(ctx, req.ShowtimeID)
	if err != nil {
		return nil, booking.Inventory{}, err
	}
	if s.TodayOnly {
		from, to := repository.DayBounds(s.now(), s.Location)
		if st.StartTime.Before(from) || !st.StartTime.Before(to) {
			return nil, booking.Inventory{}, ErrSalesClosed
		}
	}

	var (
		tr  *model.Transaction
		inv booking.Inventory
	)
	err = s.Transactions.WithTx(ctx, func(ctx context.Context) error {
		capRow, hasCapacity, err := s.lockCapacity(ctx, req.ShowtimeID)
		if err != nil {
			return err
		}
		booked, err := s.Transactions.SumCompletedSeats(ctx, req.ShowtimeID)
		if err != nil {
			return err
		}
		seats := 0
		if hasCapacity {
			seats = capRow.Seat
		}
		inv = booking.FromTotals(seats, hasCapacity, booked)
		if err := booking.CheckRequest(inv, hasCapacity, req.Seats); err != nil {
			return err
		}
		tr = &model.Transaction{
			ShowtimeID:    req.ShowtimeID,
			Seats:         req.Seats,
			TotalPrice:    int64(req.Seats) * capRow.Price,
			PaymentMethod: req.PaymentMethod,
			CustomerName:  optional(req.CustomerName),
			CustomerPhone: optional(req.CustomerPhone),
			Status:        model.StatusCompleted,
		}
		if err := s.Transactions.Create(ctx, tr); err != nil {
			return err
		}
		inv = booking.FromTotals(seats, true, booked+req.Seats)
		return nil
	})
	if err != nil {
		return nil, inv, err
	}
	s.publish(ctx, queue.EventCompleted, tr, st)
	return tr, inv, nil
}

// Cancel marks a sale cancelled, releasing its seats.  Cancelling an
// already cancelled sale returns it unchanged and publishes nothing.
func (s *BookingService) Cancel(ctx context.Context, id string) (*model.Transaction, error) {
	var (
		tr      *model.Transaction
		changed bool
	)
	err := s.Transactions.WithTx(ctx, func(ctx context.Context) error {
		var err error
		tr, err = s.Transactions.Get(ctx, id)
		if err != nil {
			return err
		}
		switch tr.Status {
		case model.StatusCancelled:
			return nil
		case model.StatusCompleted:
		default:
			return fmt.Errorf("transaction %s has unknown status %q", id, tr.Status)
		}
		if err := s.Transactions.SetStatus(ctx, id, model.StatusCancelled); err != nil {
			return err
		}
		tr.Status = model.StatusCancelled
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		st, err := s.Showtimes.Get(ctx, tr.ShowtimeID)
		if err != nil {
			st = nil
		}
		s.publish(ctx, queue.EventCancelled, tr, st)
	}
	return tr, nil
}

// Availability returns the current inventory of a showtime.
func (s *BookingService) Availability(ctx context.Context, showtimeID string) (booking.Inventory, error) {
	if _, err := s.Showtimes.Get(ctx, showtimeID); err != nil {
		return booking.Inventory{}, err
	}
	var inv booking.Inventory
	err := s.Transactions.WithTx(ctx, func(ctx context.Context) error {
		capRow, hasCapacity, err := s.lockCapacity(ctx, showtimeID)
		if err != nil {
			return err
		}
		booked, err := s.Transactions.SumCompletedSeats(ctx, showtimeID)
		if err != nil {
			return err
		}
		seats := 0
		if hasCapacity {
			seats = capRow.Seat
		}
		inv = booking.FromTotals(seats, hasCapacity, booked)
		return nil
	})
	return inv, err
}

func (s *BookingService) lockCapacity(ctx context.Context, showtimeID string) (*model.Ticket, bool, error) {
	capRow, err := s.Capacity.CapacityForUpdate(ctx, showtimeID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.Ticket{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return capRow, true, nil
}

func (s *BookingService) publish(ctx context.Context, kind string, tr *model.Transaction, st *model.Showtime) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Events.Publish(ctx, newTransactionEvent(kind, tr, st, s.now())); err != nil && s.Logger != nil {
		s.Logger.Warnf("publish %s for transaction %s: %v", kind, tr.ID, err)
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
