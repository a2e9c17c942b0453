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

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *database.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *database.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// List returns all movies, newest first.  An empty table yields an
// empty, non-nil slice.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	q := `SELECT ` + movieColumns + ` FROM movies m ORDER BY m.created_at DESC`
	rows, err := r.db.Conn(ctx).QueryContext(ctx, r.db.Rebind(q))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// Get retrieves a movie by id.  It returns ErrNotFound if there is no
// matching row.
func (r *MovieRepo) Get(ctx context.Context, id string) (*model.Movie, error) {
	q := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id = ?`
	var m model.Movie
	if err := scanMovie(r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(q), id), &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts m and fills in its generated id and timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC().Truncate(time.Second)
	m.ID = uuid.NewString()
	m.CreatedAt, m.UpdatedAt = now, now
	const q = `INSERT INTO movies (id, title, description, duration, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q),
		m.ID, m.Title, m.Description, m.Duration, m.CreatedAt, m.UpdatedAt)
	return err
}

// Update overwrites the editable columns of m.  It returns ErrNotFound
// when the row does not exist.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	m.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE movies SET title = ?, description = ?, duration = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q),
		m.Title, m.Description, m.Duration, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// MySQL reports zero affected rows for identical values; tell that
	// apart from a missing row.
	fresh, err := r.Get(ctx, m.ID)
	if err != nil {
		return err
	}
	m.CreatedAt = fresh.CreatedAt
	return nil
}

// Delete removes a movie.  Movies that still have showtimes are kept and
// ErrConflict is returned.
func (r *MovieRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(ctx context.Context) error {
		conn := r.db.Conn(ctx)
		var one int
		err := conn.QueryRowContext(ctx, r.db.Rebind(`SELECT 1 FROM movies WHERE id = ?`), id).Scan(&one)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		var showtimes int
		if err := conn.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM showtimes WHERE movie_id = ?`), id).Scan(&showtimes); err != nil {
			return err
		}
		if showtimes > 0 {
			return ErrConflict
		}
		_, err = conn.ExecContext(ctx, r.db.Rebind(`DELETE FROM movies WHERE id = ?`), id)
		return err
	})
}

// Count returns the number of movies.
func (r *MovieRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM movies`)
}

func count(ctx context.Context, db *database.DB, q string, args ...any) (int, error) {
	var n int
	err := db.Conn(ctx).QueryRowContext(ctx, db.Rebind(q), args...).Scan(&n)
	return n, err
}
