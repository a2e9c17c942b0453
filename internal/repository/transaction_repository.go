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

// TransactionRepo manages sales.  Rows are never deleted; cancelling
// flips the status so the audit trail stays complete.
type TransactionRepo struct {
	db *database.DB
}

// NewTransactionRepo constructs a TransactionRepo with the given DB handle.
func NewTransactionRepo(db *database.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// WithTx runs fn in a database transaction shared by every repository
// built on the same handle.
func (r *TransactionRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

// Create inserts a sale and fills in its id and timestamp.
func (r *TransactionRepo) Create(ctx context.Context, tr *model.Transaction) error {
	tr.ID = uuid.NewString()
	tr.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO transactions
               (id, showtime_id, seats, total_price, payment_method, customer_name, customer_phone, status, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q),
		tr.ID, tr.ShowtimeID, tr.Seats, tr.TotalPrice, string(tr.PaymentMethod),
		nullString(tr.CustomerName), nullString(tr.CustomerPhone), string(tr.Status), tr.CreatedAt)
	return err
}

// Get retrieves a sale by id.
func (r *TransactionRepo) Get(ctx context.Context, id string) (*model.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions tr WHERE tr.id = ?`
	var tr model.Transaction
	if err := scanTransaction(r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(q), id), &tr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tr, nil
}

// SumCompletedSeats returns the seats held by completed sales of a
// showtime.
func (r *TransactionRepo) SumCompletedSeats(ctx context.Context, showtimeID string) (int, error) {
	return count(ctx, r.db, `SELECT COALESCE(SUM(seats), 0) FROM transactions WHERE showtime_id = ? AND status = ?`,
		showtimeID, string(model.StatusCompleted))
}

// SetStatus changes the status of a sale.  It returns ErrNotFound when
// the row does not exist.
func (r *TransactionRepo) SetStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(`UPDATE transactions SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return nil
}

// ListCreatedBetween returns one page of sales created in [from, to),
// newest first, with showtime and movie attached, plus the total number
// of sales in the window.
func (r *TransactionRepo) ListCreatedBetween(ctx context.Context, from, to time.Time, page Page) ([]model.Transaction, int, error) {
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM transactions WHERE created_at >= ? AND created_at < ?`, from.UTC(), to.UTC())
	if err != nil {
		return nil, 0, err
	}
	q := `SELECT ` + transactionColumns + `, ` + showtimeColumns + `, ` + movieColumns + `
               FROM transactions tr
               JOIN showtimes s ON s.id = tr.showtime_id
               JOIN movies m ON m.id = s.movie_id
               WHERE tr.created_at >= ? AND tr.created_at < ?
               ORDER BY tr.created_at DESC
               LIMIT ? OFFSET ?`
	rows, err := r.db.Conn(ctx).QueryContext(ctx, r.db.Rebind(q), from.UTC(), to.UTC(), page.limit(), page.offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	result := make([]model.Transaction, 0)
	for rows.Next() {
		var (
			tr model.Transaction
			st model.Showtime
			m  model.Movie
		)
		if err := scanTransaction(rows, &tr,
			&st.ID, &st.MovieID, &st.StartTime, &st.CreatedAt,
			&m.ID, &m.Title, &m.Description, &m.Duration, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		st.Movie = &m
		tr.Showtime = &st
		result = append(result, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Count returns the number of sales.
func (r *TransactionRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM transactions`)
}
