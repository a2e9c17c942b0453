package repository

import (
	"database/sql"

	"github.com/iliyamo/cinema-admin/internal/model"
)

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const movieColumns = `m.id, m.title, m.description, m.duration, m.created_at, m.updated_at`

func scanMovie(s scanner, m *model.Movie) error {
	return s.Scan(&m.ID, &m.Title, &m.Description, &m.Duration, &m.CreatedAt, &m.UpdatedAt)
}

const showtimeColumns = `s.id, s.movie_id, s.start_time, s.created_at`

const ticketColumns = `t.id, t.showtime_id, t.seat, t.price, t.is_sold, t.created_at`

func scanTicket(s scanner, t *model.Ticket) error {
	return s.Scan(&t.ID, &t.ShowtimeID, &t.Seat, &t.Price, &t.IsSold, &t.CreatedAt)
}

const transactionColumns = `tr.id, tr.showtime_id, tr.seats, tr.total_price, tr.payment_method,
       tr.customer_name, tr.customer_phone, tr.status, tr.created_at`

func scanTransaction(s scanner, tr *model.Transaction, extra ...any) error {
	var (
		method, status string
		name, phone    sql.NullString
	)
	dest := []any{&tr.ID, &tr.ShowtimeID, &tr.Seats, &tr.TotalPrice, &method,
		&name, &phone, &status, &tr.CreatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	tr.PaymentMethod = model.PaymentMethod(method)
	tr.Status = model.TransactionStatus(status)
	tr.CustomerName = nullableString(name)
	tr.CustomerPhone = nullableString(phone)
	return nil
}

const userColumns = `u.id, u.name, u.email, u.phone, u.role, u.password, u.created_at`

func scanUser(s scanner, u *model.User) error {
	var (
		role  string
		phone sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &phone, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return err
	}
	u.Role = model.Role(role)
	u.Phone = nullableString(phone)
	return nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
