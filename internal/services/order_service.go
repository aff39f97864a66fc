package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"basket/internal/cache"
	"basket/internal/domain"
	applog "basket/internal/log"
	"basket/internal/repos"
	"basket/internal/validate"
)

type OrderService struct {
	DB     *sqlx.DB
	Prods  *repos.ProductRepo
	Orders *repos.OrderRepo
	Users  *repos.UserRepo
	Cache  cache.Cache
	Now    func() time.Time
}

func NewOrderService(db *sqlx.DB, prods *repos.ProductRepo, orders *repos.OrderRepo, users *repos.UserRepo, c cache.Cache) *OrderService {
	if c == nil {
		c = cache.Noop{}
	}
	return &OrderService{DB: db, Prods: prods, Orders: orders, Users: users, Cache: c, Now: time.Now}
}

type PlaceInput struct {
	Items           []domain.OrderLine `json:"items"`
	ShippingAddress domain.Address     `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
}

func (s *OrderService) stamp() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format(domain.TimeLayout)
}

// Place checks and decrements stock for every line and records the order in
// one transaction. Any failing line rolls back every decrement before it.
func (s *OrderService) Place(ctx context.Context, userID string, in PlaceInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, domain.Invalid("No items in order")
	}
	lines := make([]domain.OrderLine, 0, len(in.Items))
	for _, line := range in.Items {
		id, ok := validate.ID(line.ProductID)
		if !ok {
			return domain.Order{}, &domain.StockError{ProductID: line.ProductID, Missing: true}
		}
		if !validate.Quantity(line.Quantity) {
			return domain.Order{}, domain.Invalid("Invalid quantity for product %s", id)
		}
		lines = append(lines, domain.OrderLine{ProductID: id, Quantity: line.Quantity})
	}
	if _, ok := validate.Pincode(in.ShippingAddress.Pincode); !ok {
		return domain.Order{}, domain.Invalid("Invalid pincode")
	}
	payment := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if payment == "" {
		payment = domain.PaymentCOD
	}

	order := domain.Order{
		UserID:          userID,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   payment,
		Status:          domain.StatusPending,
		OrderDate:       s.stamp(),
		Items:           make([]domain.OrderItem, 0, len(lines)),
	}

	err := repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		prods := s.Prods.WithTx(tx)
		total := decimal.Zero
		for _, line := range lines {
			p, err := prods.Get(ctx, line.ProductID)
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.StockError{ProductID: line.ProductID, Missing: true}
			}
			if err != nil {
				return err
			}
			short := &domain.StockError{ProductID: p.ID, Name: p.Name, Requested: line.Quantity, Available: p.Stock}
			if p.Stock < line.Quantity {
				return short
			}
			if err := prods.Decrement(ctx, p.ID, line.Quantity); err != nil {
				return short
			}
			order.Items = append(order.Items, domain.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  line.Quantity,
				Image:     p.Image,
			})
			total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		order.TotalAmount = total.InexactFloat64()
		return s.Orders.WithTx(tx).Create(ctx, &order)
	})
	if err != nil {
		return domain.Order{}, err
	}

	// cached listings carry stock
	if err := s.Cache.Flush(ctx); err != nil {
		applog.Event("cache_flush_failed", err, nil)
	}
	return order, nil
}

// ForUser lists the user's orders, newest first.
func (s *OrderService) ForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

func (s *OrderService) All(ctx context.Context) ([]domain.Order, error) {
	return s.Orders.ListAll(ctx)
}

// UpdateStatus accepts any valid status. Moving to delivered stamps the
// delivered date.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (domain.Order, error) {
	st, ok := domain.ParseStatus(status)
	if !ok {
		return domain.Order{}, domain.Invalid("Invalid status: %s", status)
	}
	var delivered *string
	if st == domain.StatusDelivered {
		ts := s.stamp()
		delivered = &ts
	}
	return s.Orders.UpdateStatus(ctx, id, st, delivered)
}

// NextStatuses is what the admin screen may offer for the order.
func (s *OrderService) NextStatuses(ctx context.Context, id string) ([]domain.Status, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NextStatuses(o.Status), nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	return s.Orders.Delete(ctx, id)
}

func (s *OrderService) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	var err error
	if st.TotalProducts, err = s.Prods.Count(ctx); err != nil {
		return st, err
	}
	if st.TotalUsers, err = s.Users.Count(ctx); err != nil {
		return st, err
	}
	if st.TotalOrders, err = s.Orders.Count(ctx); err != nil {
		return st, err
	}
	st.TotalRevenue, err = s.Orders.Revenue(ctx)
	return st, err
}
