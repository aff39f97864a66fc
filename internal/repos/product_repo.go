package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"basket/internal/domain"
)

type ProductRepo struct{ db dbtx }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *ProductRepo) WithTx(tx *sqlx.Tx) *ProductRepo { return &ProductRepo{db: tx} }

const productCols = `
    p.id, p.name, p.description, p.price, p.original_price, p.category_id, p.image,
    p.stock, p.unit, p.discount, p.is_featured, p.created_at`

// productRow carries the joined category so listings can embed it.
type productRow struct {
	domain.Product
	CatName   sql.NullString `db:"cat_name"`
	CatDesc   sql.NullString `db:"cat_description"`
	CatImage  sql.NullString `db:"cat_image"`
	CatActive sql.NullBool   `db:"cat_is_active"`
	CatTS     sql.NullString `db:"cat_created_at"`
}

func (row productRow) product() domain.Product {
	p := row.Product
	if row.CatName.Valid {
		p.Category = &domain.Category{
			ID:          p.CategoryID,
			Name:        row.CatName.String,
			Description: row.CatDesc.String,
			Image:       row.CatImage.String,
			Active:      row.CatActive.Bool,
			CreatedAt:   row.CatTS.String,
		}
	}
	return p
}

const productSelect = `
  SELECT` + productCols + `,
    c.name AS cat_name, c.description AS cat_description, c.image AS cat_image,
    c.is_active AS cat_is_active, c.created_at AS cat_created_at
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id`

type ProductFilter struct {
	CategoryID string
	Featured   bool
	Limit      int
}

func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.CategoryID != "" {
		where += ` AND p.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Featured {
		where += ` AND p.is_featured = 1`
	}
	q := productSelect + where + ` ORDER BY p.created_at DESC, p.rowid DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.product())
	}
	return out, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, productSelect+` WHERE p.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.NotFound("Product not found")
	}
	if err != nil {
		return domain.Product{}, err
	}
	return row.product(), nil
}

// Create assigns the id and creation time.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	p.ID = newID()
	p.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO products
	    (id, name, description, price, original_price, category_id, image, stock, unit, discount, is_featured, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Price, p.OriginalPrice, p.CategoryID, p.Image,
		p.Stock, p.Unit, p.Discount, p.Featured, p.CreatedAt)
	return err
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
	  UPDATE products SET
	    name = ?, description = ?, price = ?, original_price = ?, category_id = ?,
	    image = ?, stock = ?, unit = ?, discount = ?, is_featured = ?
	  WHERE id = ?
	`, p.Name, p.Description, p.Price, p.OriginalPrice, p.CategoryID,
		p.Image, p.Stock, p.Unit, p.Discount, p.Featured, p.ID)
	return affected(res, err, "Product not found")
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return affected(res, err, "Product not found")
}

// Decrement subtracts by units only while enough stock remains, so stock
// never goes negative even under concurrent orders.
func (r *ProductRepo) Decrement(ctx context.Context, id string, by int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, by, id, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("insufficient stock for %s", id)
	}
	return nil
}

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID)
	return n, err
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`)
	return n, err
}

// affected maps a zero-row write to a not-found error.
func affected(res sql.Result, err error, missing string) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("%s", missing)
	}
	return nil
}
