package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"basket/internal/domain"
)

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, name, email, password_hash, phone, address, created_at`

func (r *UserRepo) one(ctx context.Context, q string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE `+q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.one(ctx, `LOWER(email) = LOWER(?)`, email)
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	return r.one(ctx, `id = ?`, id)
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.ID = newID()
	u.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users(id, name, email, password_hash, phone, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.Hash, u.Phone, u.Address, u.CreatedAt)
	if isConstraint(err, "UNIQUE") {
		return domain.Invalid("User already exists")
	}
	return err
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+userCols+` FROM users ORDER BY created_at DESC`)
	return out, err
}

// Update writes name, email, phone and address.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?
	`, u.Name, u.Email, u.Phone, u.Address, u.ID)
	if isConstraint(err, "UNIQUE") {
		return domain.Conflict("Email already in use")
	}
	return affected(res, err, "User not found")
}

// Delete removes the account; orders stay for the record.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return affected(res, err, "User not found")
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`)
	return n, err
}
