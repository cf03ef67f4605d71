package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
)

// NewCustomerRequest creates a customer together with the order.
// swagger:model NewCustomerRequest
type NewCustomerRequest struct {
	Name    string `json:"customer_name"    example:"Juan Cruz"`
	Address string `json:"customer_address" example:"12 Rizal St, Quezon City"`
	Email   string `json:"customer_email"   example:"juan.cruz@mail.com"`
	Number  string `json:"customer_number"  example:"09171234567"`
}

// CreateOrderRequest payload of order creation. With items it is a cart checkout;
// without items it is a manual header entry, completed by POST /api/order_items.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Items       []CartEntry         `json:"items"`
	CustomerID  int64               `json:"customer_id"  example:"3"`
	NewCustomer *NewCustomerRequest `json:"new_customer,omitempty"`
	AdminID     int64               `json:"admin_id"     example:"1"`
	OrderDate   string              `json:"order_date"   example:"2024-05-01"`
	Status      string              `json:"order_status" example:"pending"`

	AdminName string           `json:"admin_name,omitempty"`
	Total     *decimal.Decimal `json:"order_total_price,omitempty" swaggertype:"string"`
}

func (r CreateOrderRequest) IsCart() bool { return len(r.Items) > 0 }

func (r CreateOrderRequest) CartInput(actor, idempotencyKey string) (CreateOrderInput, error) {
	date, err := ParseDate(r.OrderDate)
	if err != nil {
		return CreateOrderInput{}, err
	}
	in := CreateOrderInput{
		Cart:           r.Items,
		CustomerID:     r.CustomerID,
		AdminID:        r.AdminID,
		OrderDate:      date,
		Status:         r.Status,
		Actor:          actor,
		IdempotencyKey: idempotencyKey,
	}
	if nc := r.NewCustomer; nc != nil {
		in.NewCustomer = &customer.Customer{Name: nc.Name, Address: nc.Address, Email: nc.Email, Number: nc.Number}
	}
	return in, nil
}

func (r CreateOrderRequest) HeaderInput(actor string) (HeaderInput, error) {
	if r.CustomerID <= 0 || strings.TrimSpace(r.AdminName) == "" || r.OrderDate == "" || r.Status == "" || r.Total == nil {
		return HeaderInput{}, apperr.Validation("customer_id, admin_name, order_date, order_status and order_total_price are required")
	}
	date, err := ParseDate(r.OrderDate)
	if err != nil {
		return HeaderInput{}, err
	}
	return HeaderInput{
		CustomerID: r.CustomerID,
		AdminName:  r.AdminName,
		OrderDate:  date,
		Status:     r.Status,
		Total:      *r.Total,
		Actor:      actor,
	}, nil
}

// UpdateStatusRequest payload of PATCH /api/orders/{id}.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"order_status" example:"shipped"`
}

// CreateOrderItemRequest payload of a manually entered order line.
// swagger:model CreateOrderItemRequest
type CreateOrderItemRequest struct {
	OrderID   int64            `json:"order_id"   example:"10"`
	ItemID    int64            `json:"item_id"    example:"12"`
	Quantity  int              `json:"quantity"   example:"2"`
	UnitPrice *decimal.Decimal `json:"unit_price" swaggertype:"string" example:"50.00"`
	Subtotal  *decimal.Decimal `json:"subtotal"   swaggertype:"string" example:"100.00"`
}

func (r CreateOrderItemRequest) LineInput(actor string) (LineInput, error) {
	if r.OrderID <= 0 || r.ItemID <= 0 || r.UnitPrice == nil || r.Subtotal == nil {
		return LineInput{}, apperr.Validation("order_id, item_id, quantity, unit_price and subtotal are required")
	}
	return LineInput{
		OrderID:   r.OrderID,
		ItemID:    r.ItemID,
		Quantity:  r.Quantity,
		UnitPrice: *r.UnitPrice,
		Subtotal:  *r.Subtotal,
		Actor:     actor,
	}, nil
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation("order_date is required")
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("invalid order_date %q: expected YYYY-MM-DD", s)
}
