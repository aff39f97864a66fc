package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"basket/internal/domain"
)

type CategoryRepo struct{ db dbtx }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, name, description, image, is_active, created_at`

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	q := `SELECT ` + categoryCols + ` FROM categories`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name`
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, q)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, domain.NotFound("Category not found")
	}
	return c, err
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	c.ID = newID()
	c.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO categories(id, name, description, image, is_active, created_at)
	  VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Description, c.Image, c.Active, c.CreatedAt)
	return uniqueName(err)
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx, `
	  UPDATE categories SET name = ?, description = ?, image = ?, is_active = ? WHERE id = ?
	`, c.Name, c.Description, c.Image, c.Active, c.ID)
	return affected(res, uniqueName(err), "Category not found")
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if isConstraint(err, "FOREIGN KEY") {
		return domain.Conflict("Cannot delete category with existing products")
	}
	return affected(res, err, "Category not found")
}

func uniqueName(err error) error {
	if isConstraint(err, "UNIQUE") {
		return domain.Conflict("Category name already exists")
	}
	return err
}

// isConstraint matches sqlite constraint failures by their message text.
func isConstraint(err error, kind string) bool {
	return err != nil && strings.Contains(err.Error(), kind+" constraint failed")
}
