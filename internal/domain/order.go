package domain

import "strings"

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// progression is the forward order of the lifecycle, cancelled excluded.
var progression = []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == StatusCancelled {
		return st, true
	}
	for _, p := range progression {
		if p == st {
			return st, true
		}
	}
	return "", false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// NextStatuses lists what the admin screen offers for an order in status s:
// the current status, every later step, and cancellation. The update endpoint
// itself does not enforce this.
func NextStatuses(s Status) []Status {
	if s.Terminal() {
		return []Status{s}
	}
	var out []Status
	seen := false
	for _, p := range progression {
		if p == s {
			seen = true
		}
		if seen {
			out = append(out, p)
		}
	}
	if !seen {
		return nil
	}
	return append(out, StatusCancelled)
}

const PaymentCOD = "cod"

// OrderLine is what a client submits per cart line at checkout.
type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderItem is the snapshot of a product taken when the order was placed.
type OrderItem struct {
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Image     string  `db:"image" json:"image"`
}

type Order struct {
	ID              string      `db:"id" json:"id"`
	UserID          string      `db:"user_id" json:"userId"`
	UserName        string      `db:"user_name" json:"userName,omitempty"`
	UserEmail       string      `db:"user_email" json:"userEmail,omitempty"`
	Items           []OrderItem `db:"-" json:"items"`
	TotalAmount     float64     `db:"total_amount" json:"totalAmount"`
	ShippingAddress Address     `db:"shipping_address" json:"shippingAddress"`
	PaymentMethod   string      `db:"payment_method" json:"paymentMethod"`
	Status          Status      `db:"status" json:"status"`
	OrderDate       string      `db:"order_date" json:"orderDate"`
	DeliveredDate   *string     `db:"delivered_date" json:"deliveredDate,omitempty"`
}

type Stats struct {
	TotalProducts int     `json:"totalProducts"`
	TotalUsers    int     `json:"totalUsers"`
	TotalOrders   int     `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
}
