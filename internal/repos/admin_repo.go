package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"basket/internal/domain"
)

type AdminRepo struct{ db *sqlx.DB }

func NewAdminRepo(db *sqlx.DB) *AdminRepo { return &AdminRepo{db: db} }

const adminCols = `id, username, email, password_hash, role, permissions, is_active, created_at`

func (r *AdminRepo) one(ctx context.Context, q string, arg any) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.GetContext(ctx, &a, `SELECT `+adminCols+` FROM admins WHERE `+q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Admin not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) ByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.one(ctx, `LOWER(email) = LOWER(?)`, email)
}

func (r *AdminRepo) ByID(ctx context.Context, id string) (*domain.Admin, error) {
	return r.one(ctx, `id = ?`, id)
}

func (r *AdminRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM admins`)
	return n, err
}

func (r *AdminRepo) Create(ctx context.Context, a *domain.Admin) error {
	a.ID = newID()
	a.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins(id, username, email, password_hash, role, permissions, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Username, a.Email, a.Hash, a.Role, a.Permissions, a.Active, a.CreatedAt)
	if isConstraint(err, "UNIQUE") {
		return domain.Invalid("Admin with this email already exists")
	}
	return err
}

// CreateFirst inserts a only while the table is empty, so two racing setup
// calls cannot both succeed.
func (r *AdminRepo) CreateFirst(ctx context.Context, a *domain.Admin) (bool, error) {
	a.ID = newID()
	a.CreatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO admins(id, username, email, password_hash, role, permissions, is_active, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM admins)
	`, a.ID, a.Username, a.Email, a.Hash, a.Role, a.Permissions, a.Active, a.CreatedAt)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *AdminRepo) List(ctx context.Context) ([]domain.Admin, error) {
	out := []domain.Admin{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+adminCols+` FROM admins ORDER BY created_at`)
	return out, err
}

func (r *AdminRepo) Update(ctx context.Context, a *domain.Admin) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE admins SET username = ?, email = ?, role = ?, permissions = ?, is_active = ? WHERE id = ?
	`, a.Username, a.Email, a.Role, a.Permissions, a.Active, a.ID)
	if isConstraint(err, "UNIQUE") {
		return domain.Conflict("Email already in use")
	}
	return affected(res, err, "Admin not found")
}

func (r *AdminRepo) SetPassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admins SET password_hash = ? WHERE id = ?`, hash, id)
	return affected(res, err, "Admin not found")
}

func (r *AdminRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	return affected(res, err, "Admin not found")
}
