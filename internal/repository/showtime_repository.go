// This file defines the repository for showtimes.  A showtime is a
// scheduled screening of one movie; read queries join the movie and,
// for the full list, the capacity rows of every showtime.
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

// ShowtimeRepo manages persistence for showtimes.
type ShowtimeRepo struct {
	db *database.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *database.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

const showtimeWithMovie = `SELECT ` + showtimeColumns + `, ` + movieColumns + `
               FROM showtimes s
               JOIN movies m ON m.id = s.movie_id`

func scanShowtimeWithMovie(s scanner, st *model.Showtime) error {
	var m model.Movie
	if err := s.Scan(&st.ID, &st.MovieID, &st.StartTime, &st.CreatedAt,
		&m.ID, &m.Title, &m.Description, &m.Duration, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return err
	}
	st.Movie = &m
	return nil
}

func (r *ShowtimeRepo) query(ctx context.Context, q string, args ...any) ([]model.Showtime, error) {
	rows, err := r.db.Conn(ctx).QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Showtime, 0)
	for rows.Next() {
		var st model.Showtime
		if err := scanShowtimeWithMovie(rows, &st); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// List returns every showtime ordered by start time with its movie and
// capacity rows attached.
func (r *ShowtimeRepo) List(ctx context.Context) ([]model.Showtime, error) {
	showtimes, err := r.query(ctx, showtimeWithMovie+` ORDER BY s.start_time ASC`)
	if err != nil {
		return nil, err
	}
	if len(showtimes) == 0 {
		return showtimes, nil
	}
	// Populate tickets for all showtimes in a single query
	index := make(map[string]int, len(showtimes))
	for i, st := range showtimes {
		index[st.ID] = i
		showtimes[i].Tickets = []model.Ticket{}
	}
	rows, err := r.db.Conn(ctx).QueryContext(ctx, r.db.Rebind(`SELECT `+ticketColumns+` FROM tickets t ORDER BY t.created_at ASC`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t model.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		if i, ok := index[t.ShowtimeID]; ok {
			showtimes[i].Tickets = append(showtimes[i].Tickets, t)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return showtimes, nil
}

// ListByMovie returns all showtimes of one movie.  The movie is not
// joined; callers use the result for placement checks.
func (r *ShowtimeRepo) ListByMovie(ctx context.Context, movieID string) ([]model.Showtime, error) {
	q := `SELECT ` + showtimeColumns + ` FROM showtimes s WHERE s.movie_id = ? ORDER BY s.start_time ASC`
	rows, err := r.db.Conn(ctx).QueryContext(ctx, r.db.Rebind(q), movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Showtime, 0)
	for rows.Next() {
		var st model.Showtime
		if err := rows.Scan(&st.ID, &st.MovieID, &st.StartTime, &st.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListBetween returns showtimes starting in [from, to) with their movie.
func (r *ShowtimeRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.Showtime, error) {
	return r.query(ctx, showtimeWithMovie+` WHERE s.start_time >= ? AND s.start_time < ? ORDER BY s.start_time ASC`,
		from.UTC(), to.UTC())
}

// Get retrieves a showtime and its movie.  It returns ErrNotFound if
// there is no matching row.
func (r *ShowtimeRepo) Get(ctx context.Context, id string) (*model.Showtime, error) {
	var st model.Showtime
	err := scanShowtimeWithMovie(r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(showtimeWithMovie+` WHERE s.id = ?`), id), &st)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

// Create inserts a showtime.  A unique (movie_id, start_time) index
// surfaces as ErrDuplicate.
func (r *ShowtimeRepo) Create(ctx context.Context, st *model.Showtime) error {
	st.ID = uuid.NewString()
	st.StartTime = st.StartTime.UTC()
	st.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO showtimes (id, movie_id, start_time, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q), st.ID, st.MovieID, st.StartTime, st.CreatedAt)
	if database.IsDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// Update moves a showtime to another movie and/or start time.  It
// returns ErrNotFound when the row does not exist.
func (r *ShowtimeRepo) Update(ctx context.Context, st *model.Showtime) error {
	st.StartTime = st.StartTime.UTC()
	const q = `UPDATE showtimes SET movie_id = ?, start_time = ? WHERE id = ?`
	res, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q), st.MovieID, st.StartTime, st.ID)
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
	if err := r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(`SELECT 1 FROM showtimes WHERE id = ?`), st.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a showtime together with its capacity rows.  A
// showtime that has transactions is kept and ErrConflict is returned, so
// the sales history stays intact.
func (r *ShowtimeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		conn := r.db.Conn(ctx)
		var one int
		if err := conn.QueryRowContext(ctx, r.db.Rebind(`SELECT 1 FROM showtimes WHERE id = ?`), id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		var sales int
		if err := conn.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM transactions WHERE showtime_id = ?`), id).Scan(&sales); err != nil {
			return err
		}
		if sales > 0 {
			return ErrConflict
		}
		for _, q := range []string{
			`DELETE FROM tickets WHERE showtime_id = ?`,
			`DELETE FROM showtimes WHERE id = ?`,
		} {
			if _, err := conn.ExecContext(ctx, r.db.Rebind(q), id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of showtimes.
func (r *ShowtimeRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM showtimes`)
}
