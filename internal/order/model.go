package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus accepts any letter case and returns the canonical lower-case status.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range statuses {
		if v == st {
			return v, nil
		}
	}
	return "", apperr.Validation("invalid order status %q: must be one of pending, processing, shipped, delivered, cancelled", s)
}

// Order is a sale header. CustomerName and AdminName are snapshots taken at creation.
// swagger:model
type Order struct {
	ID           int64           `json:"order_id"`
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	AdminName    string          `json:"admin_name"`
	OrderDate    time.Time       `json:"order_date"`
	Status       Status          `json:"order_status" swaggertype:"string"`
	Total        decimal.Decimal `json:"order_total_price" swaggertype:"string"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// LineItem is one priced line of an order. UnitPrice, Description and Unit are copied
// from the catalog when the line is written.
// swagger:model
type LineItem struct {
	ID          int64           `json:"order_item_id"`
	OrderID     int64           `json:"order_id"`
	ItemID      int64           `json:"item_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Subtotal    decimal.Decimal `json:"subtotal" swaggertype:"string"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CartEntry struct {
	ItemID   int64 `json:"item_id"  example:"12"`
	Quantity int   `json:"quantity" example:"2"`
}

// Receipt is what a create returns. Replayed is set when an Idempotency-Key matched
// an order created earlier.
type Receipt struct {
	Order    *Order     `json:"order"`
	Lines    []LineItem `json:"orderItems"`
	Replayed bool       `json:"-"`
}
