package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-admin/internal/database"
	"github.com/iliyamo/cinema-admin/internal/model"
)

// TicketRepo manages the capacity-and-price rows of showtimes.
type TicketRepo struct {
	db *database.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *database.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

const ticketWithShowtime = `SELECT ` + ticketColumns + `, ` + showtimeColumns + `, ` + movieColumns + `
               FROM tickets t
               JOIN showtimes s ON s.id = t.showtime_id
               JOIN movies m ON m.id = s.movie_id`

func scanTicketWithShowtime(s scanner, t *model.Ticket) error {
	var (
		st model.Showtime
		m  model.Movie
	)
	if err := s.Scan(&t.ID, &t.ShowtimeID, &t.Seat, &t.Price, &t.IsSold, &t.CreatedAt,
		&st.ID, &st.MovieID, &st.StartTime, &st.CreatedAt,
		&m.ID, &m.Title, &m.Description, &m.Duration, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return err
	}
	st.Movie = &m
	t.Showtime = &st
	return nil
}

// List returns every capacity row with its showtime and movie, ordered
// by seat count.
func (r *TicketRepo) List(ctx context.Context) ([]model.Ticket, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx, r.db.Rebind(ticketWithShowtime+` ORDER BY t.seat ASC`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := scanTicketWithShowtime(rows, &t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}

// Get retrieves a capacity row with its showtime and movie.
func (r *TicketRepo) Get(ctx context.Context, id string) (*model.Ticket, error) {
	var t model.Ticket
	err := scanTicketWithShowtime(r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(ticketWithShowtime+` WHERE t.id = ?`), id), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ExistsForShowtime reports whether a capacity row other than excludeID
// exists for the showtime.  Pass an empty excludeID on create.
func (r *TicketRepo) ExistsForShowtime(ctx context.Context, showtimeID, excludeID string) (bool, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM tickets WHERE showtime_id = ? AND id <> ?`, showtimeID, excludeID)
	return n > 0, err
}

// CapacityForUpdate returns the capacity row of a showtime and, inside a
// transaction, locks it until commit.  Concurrent bookings for the same
// showtime serialize on this row.  It returns ErrNotFound when the
// showtime has no capacity row.
func (r *TicketRepo) CapacityForUpdate(ctx context.Context, showtimeID string) (*model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.showtime_id = ? FOR UPDATE`
	var t model.Ticket
	if err := scanTicket(r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(q), showtimeID), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetForUpdate retrieves a capacity row by id and, inside a
// transaction, locks it until commit.  Bookings lock the same row through
// CapacityForUpdate, so an edit and a sale for its showtime serialize.
func (r *TicketRepo) GetForUpdate(ctx context.Context, id string) (*model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.id = ? FOR UPDATE`
	var t model.Ticket
	if err := scanTicket(r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(q), id), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a capacity row.  New rows are never marked sold.  A
// second row for the same showtime violates the unique index and yields
// ErrDuplicate.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	t.ID = uuid.NewString()
	t.IsSold = false
	t.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO tickets (id, showtime_id, seat, price, is_sold, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q), t.ID, t.ShowtimeID, t.Seat, t.Price, t.IsSold, t.CreatedAt)
	if database.IsDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// Update overwrites showtime, seat count and price of a capacity row.
func (r *TicketRepo) Update(ctx context.Context, t *model.Ticket) error {
	const q = `UPDATE tickets SET showtime_id = ?, seat = ?, price = ? WHERE id = ?`
	res, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q), t.ShowtimeID, t.Seat, t.Price, t.ID)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	if err := r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(`SELECT 1 FROM tickets WHERE id = ?`), t.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Count returns the number of capacity rows.
func (r *TicketRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM tickets`)
}
