package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-admin/internal/database"
	"github.com/iliyamo/cinema-admin/internal/model"
)

type UserRepo struct{ db *database.DB }

func NewUserRepo(db *database.DB) *UserRepo { return &UserRepo{db: db} }

// UserFilter narrows List.  Zero values do not filter.
type UserFilter struct {
	Role  model.Role
	Phone string
}

// Create inserts a user whose password is already hashed.  The e-mail is
// normalized; an existing address yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO users (id, name, email, phone, role, password, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q),
		u.ID, u.Name, u.Email, nullString(u.Phone), string(u.Role), u.PasswordHash, u.CreatedAt)
	if database.IsDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = ?`, normalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	if err := scanUser(r.db.Conn(ctx).QueryRowContext(ctx, r.db.Rebind(q), arg), &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns users matching f, newest first.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE 1 = 1`
	var args []any
	if f.Role != "" {
		q += ` AND u.role = ?`
		args = append(args, string(f.Role))
	}
	if p := strings.TrimSpace(f.Phone); p != "" {
		q += ` AND u.phone = ?`
		args = append(args, p)
	}
	q += ` ORDER BY u.created_at DESC`
	rows, err := r.db.Conn(ctx).QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Update overwrites name, email, phone and role.  The password is not
// touched.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	const q = `UPDATE users SET name = ?, email = ?, phone = ?, role = ? WHERE id = ?`
	res, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(q), u.Name, u.Email, nullString(u.Phone), string(u.Role), u.ID)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = r.GetByID(ctx, u.ID)
	return err
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM users`)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
