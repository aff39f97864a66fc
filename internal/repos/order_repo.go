package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"basket/internal/domain"
)

type OrderRepo struct{ db dbtx }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: tx} }

const orderSelect = `
  SELECT o.id, o.user_id,
         COALESCE(u.name, '')  AS user_name,
         COALESCE(u.email, '') AS user_email,
         o.total_amount, o.shipping_address, o.payment_method, o.status,
         o.order_date, o.delivered_date
  FROM orders o
  LEFT JOIN users u ON u.id = o.user_id`

const orderNewest = ` ORDER BY o.order_date DESC, o.rowid DESC`

// Create writes the header and its item snapshots. Callers wanting both in
// one transaction bind the repo with WithTx first.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	o.ID = newID()
	if o.OrderDate == "" {
		o.OrderDate = now()
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO orders(id, user_id, total_amount, shipping_address, payment_method, status, order_date, delivered_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, o.TotalAmount, o.ShippingAddress, o.PaymentMethod, o.Status, o.OrderDate, o.DeliveredDate); err != nil {
		return err
	}
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO order_items(order_id, position, product_id, name, price, quantity, image)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, o.ID, i, it.ProductID, it.Name, it.Price, it.Quantity, it.Image); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, orderSelect+` WHERE o.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.NotFound("Order not found")
	}
	if err != nil {
		return domain.Order{}, err
	}
	list := []domain.Order{o}
	if err := r.attachItems(ctx, list); err != nil {
		return domain.Order{}, err
	}
	return list[0], nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, orderSelect+` WHERE o.user_id = ?`+orderNewest, userID)
}

// ListAll returns every order, newest first, with the buyer's name and email.
func (r *OrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, orderSelect+orderNewest)
}

func (r *OrderRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	out := []domain.Order{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	idx := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		idx[o.ID] = i
		orders[i].Items = []domain.OrderItem{}
	}
	q, args, err := sqlx.In(`
		SELECT order_id, product_id, name, price, quantity, image
		FROM order_items WHERE order_id IN (?)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return err
	}
	var items []domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(q), args...); err != nil {
		return err
	}
	for _, it := range items {
		i := idx[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return nil
}

// UpdateStatus sets the status and, when deliveredAt is non-nil, the
// delivered date. It returns the updated order.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.Status, deliveredAt *string) (domain.Order, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, delivered_date = COALESCE(?, delivered_date) WHERE id = ?
	`, status, deliveredAt, id)
	if err := affected(res, err, "Order not found"); err != nil {
		return domain.Order{}, err
	}
	return r.Get(ctx, id)
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	return affected(res, err, "Order not found")
}

func (r *OrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders`)
	return n, err
}

// Revenue sums order totals, cancelled orders excluded.
func (r *OrderRepo) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'cancelled'
	`)
	return total, err
}
