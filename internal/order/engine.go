// Package order turns carts into persisted orders and drives the order lifecycle:
// status changes, cascading delete, restock and manual line entry.
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
)

type CreateOrderInput struct {
	Cart []CartEntry
	// Exactly one of CustomerID and NewCustomer is set.
	CustomerID     int64
	NewCustomer    *customer.Customer
	AdminID        int64
	OrderDate      time.Time
	Status         string
	Actor          string
	IdempotencyKey string
}

// HeaderInput is a manually entered order header. Its total is taken as given.
type HeaderInput struct {
	CustomerID int64
	AdminName  string
	OrderDate  time.Time
	Status     string
	Total      decimal.Decimal
	Actor      string
}

type LineInput struct {
	OrderID   int64
	ItemID    int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Actor     string
}

type Engine struct {
	repo      Repository
	catalog   Catalog
	customers Customers
	admins    Admins
	audit     audit.Sink
	idem      IdempotencyStore
	log       *zap.Logger
}

type Option func(*Engine)

// WithIdempotency enables Idempotency-Key deduplication on CreateOrder.
func WithIdempotency(s IdempotencyStore) Option {
	return func(e *Engine) { e.idem = s }
}

func NewEngine(repo Repository, cat Catalog, customers Customers, admins Admins, sink audit.Sink, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{repo: repo, catalog: cat, customers: customers, admins: admins, audit: sink, log: log}
	for _, o := range opts {
		o(e)
	}
	return e
}

// CreateOrder validates the cart against the catalog and directories, then persists
// the order, its lines and the stock decrements atomically.
func (e *Engine) CreateOrder(ctx context.Context, in CreateOrderInput) (rc *Receipt, err error) {
	if e.idem == nil || in.IdempotencyKey == "" {
		return e.createOrder(ctx, in)
	}

	id, replay, err := e.idem.Reserve(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if replay {
		o, lines, err := e.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Receipt{Order: o, Lines: lines, Replayed: true}, nil
	}

	defer func() {
		// The request context may already be gone; the key must still be settled.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err != nil {
			if rerr := e.idem.Release(sctx, in.IdempotencyKey); rerr != nil {
				e.log.Warn("release idempotency key", zap.String("key", in.IdempotencyKey), zap.Error(rerr))
			}
			return
		}
		if cerr := e.idem.Complete(sctx, in.IdempotencyKey, rc.Order.ID); cerr != nil {
			e.log.Warn("complete idempotency key", zap.String("key", in.IdempotencyKey), zap.Error(cerr))
		}
	}()
	return e.createOrder(ctx, in)
}

func (e *Engine) createOrder(ctx context.Context, in CreateOrderInput) (*Receipt, error) {
	status, err := validateCreate(in)
	if err != nil {
		return nil, err
	}

	lines := make([]LineItem, 0, len(in.Cart))
	for _, entry := range mergeCart(in.Cart) {
		it, err := e.catalog.GetItem(ctx, entry.ItemID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, apperr.NotFound(fmt.Sprintf("item %d", entry.ItemID))
			}
			return nil, err
		}
		if entry.Quantity > it.Quantity {
			return nil, apperr.InsufficientStock(it.Description, it.Quantity, it.Unit)
		}
		lines = append(lines, priceLine(it, entry.Quantity))
	}

	o := &Order{
		OrderDate: in.OrderDate,
		Status:    status,
		Total:     sumSubtotals(lines),
	}
	if status == StatusCancelled {
		o.Total = decimal.Zero
	}

	var newCustomer *customer.Customer
	if in.NewCustomer != nil {
		nc := *in.NewCustomer
		if err := nc.Validate(true); err != nil {
			return nil, err
		}
		newCustomer = &nc
	} else {
		c, err := e.customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		o.CustomerID = c.ID
		o.CustomerName = c.Name
	}

	a, err := e.admins.GetByID(ctx, in.AdminID)
	if err != nil {
		return nil, err
	}
	o.AdminName = a.DisplayName()

	if err := e.repo.Create(ctx, o, lines, newCustomer); err != nil {
		return nil, err
	}

	if newCustomer != nil {
		e.audit.Record(fmt.Sprintf("Customer created: %s (ID: %d)", newCustomer.Name, newCustomer.ID), in.Actor)
	}
	e.audit.Record(fmt.Sprintf("Order created: #%d for %s by %s, %d line(s), total %s",
		o.ID, o.CustomerName, o.AdminName, len(lines), o.Total.StringFixed(2)), in.Actor)
	e.log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Int("lines", len(lines)),
		zap.String("total", o.Total.StringFixed(2)))

	return &Receipt{Order: o, Lines: lines}, nil
}

func validateCreate(in CreateOrderInput) (Status, error) {
	if len(in.Cart) == 0 {
		return "", apperr.Validation("order must contain at least one item")
	}
	for _, c := range in.Cart {
		if c.ItemID <= 0 {
			return "", apperr.Validation("item_id is required for every cart entry")
		}
		if c.Quantity <= 0 {
			return "", apperr.Validation("quantity for item %d must be positive", c.ItemID)
		}
	}
	if in.OrderDate.IsZero() {
		return "", apperr.Validation("order_date is required")
	}
	if in.NewCustomer == nil && in.CustomerID <= 0 {
		return "", apperr.Validation("customer_id or new_customer is required")
	}
	if in.NewCustomer != nil && in.CustomerID > 0 {
		return "", apperr.Validation("customer_id and new_customer are mutually exclusive")
	}
	if in.AdminID <= 0 {
		return "", apperr.Validation("admin_id is required")
	}
	if in.Status == "" {
		return StatusPending, nil
	}
	return ParseStatus(in.Status)
}

// UpdateStatus never touches stock, cancelled or not.
func (e *Engine) UpdateStatus(ctx context.Context, id int64, status, actor string) (*Order, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	prev, o, err := e.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	e.audit.Record(fmt.Sprintf("Order status updated: #%d, status changed from %s to %s, total %s",
		o.ID, prev, o.Status, o.Total.StringFixed(2)), actor)
	return o, nil
}

func (e *Engine) DeleteOrder(ctx context.Context, id int64, actor string) error {
	o, lines, err := e.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	e.audit.Record(fmt.Sprintf("Order deleted: #%d for %s, %d line(s), total %s",
		o.ID, o.CustomerName, len(lines), o.Total.StringFixed(2)), actor)
	return nil
}

// RestockItem sets the absolute quantity and raises the reorder threshold by one.
func (e *Engine) RestockItem(ctx context.Context, itemID int64, quantity int, actor string) (*catalog.Item, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity must be non-negative")
	}
	ch, err := e.catalog.Restock(ctx, itemID, quantity)
	if err != nil {
		return nil, err
	}
	e.audit.Record(fmt.Sprintf(
		"Item quantity and reorder threshold updated: %s (ID: %d), quantity changed from %d to %d, reorder threshold changed from %d to %d",
		ch.After.Description, ch.After.ID, ch.Before.Quantity, ch.After.Quantity,
		ch.Before.ReorderThreshold, ch.After.ReorderThreshold), actor)
	e.warnLowStock(&ch.After)
	return &ch.After, nil
}

func (e *Engine) SetItemQuantity(ctx context.Context, itemID int64, quantity int, actor string) (*catalog.Item, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity must be non-negative")
	}
	ch, err := e.catalog.SetQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, err
	}
	e.audit.Record(fmt.Sprintf("Item quantity updated: %s (ID: %d), quantity changed from %d to %d",
		ch.After.Description, ch.After.ID, ch.Before.Quantity, ch.After.Quantity), actor)
	e.warnLowStock(&ch.After)
	return &ch.After, nil
}

func (e *Engine) warnLowStock(it *catalog.Item) {
	if !it.LowOnStock() {
		return
	}
	e.log.Warn("item at or under reorder threshold",
		zap.Int64("item_id", it.ID),
		zap.Int("quantity", it.Quantity),
		zap.Int("reorder_threshold", it.ReorderThreshold))
}

// CreateOrderHeader stores a manually entered header. No stock moves.
func (e *Engine) CreateOrderHeader(ctx context.Context, in HeaderInput) (*Order, error) {
	status, err := ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if in.Total.IsNegative() {
		return nil, apperr.Validation("order_total_price must be non-negative")
	}
	if in.OrderDate.IsZero() {
		return nil, apperr.Validation("order_date is required")
	}
	c, err := e.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	o := &Order{
		CustomerID:   c.ID,
		CustomerName: c.Name,
		AdminName:    strings.TrimSpace(in.AdminName),
		OrderDate:    in.OrderDate,
		Status:       status,
		Total:        in.Total,
	}
	if status == StatusCancelled {
		o.Total = decimal.Zero
	}
	if err := e.repo.CreateHeader(ctx, o); err != nil {
		return nil, err
	}
	e.audit.Record(fmt.Sprintf("Order created: #%d for %s by %s, total %s",
		o.ID, o.CustomerName, o.AdminName, o.Total.StringFixed(2)), in.Actor)
	return o, nil
}

// AddLine appends a manually entered line. The unit price is rounded to cents and the
// subtotal recomputed from it; a caller value that disagrees is logged and replaced.
func (e *Engine) AddLine(ctx context.Context, in LineInput) (*LineItem, error) {
	switch {
	case in.Quantity <= 0:
		return nil, apperr.Validation("quantity must be positive")
	case in.UnitPrice.IsNegative():
		return nil, apperr.Validation("unit_price must be non-negative")
	case in.Subtotal.IsNegative():
		return nil, apperr.Validation("subtotal must be non-negative")
	}

	if _, _, err := e.repo.Get(ctx, in.OrderID); err != nil {
		return nil, err
	}
	it, err := e.catalog.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}

	unitPrice := in.UnitPrice.Round(2)
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if !subtotal.Equal(in.Subtotal) {
		e.log.Warn("order line subtotal mismatch, using computed value",
			zap.Int64("order_id", in.OrderID),
			zap.Int64("item_id", in.ItemID),
			zap.String("given", in.Subtotal.String()),
			zap.String("computed", subtotal.String()))
	}

	l := &LineItem{
		OrderID:     in.OrderID,
		ItemID:      it.ID,
		Quantity:    in.Quantity,
		UnitPrice:   unitPrice,
		Subtotal:    subtotal,
		Description: it.Description,
		Unit:        it.Unit,
	}
	if err := e.repo.AddLine(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (e *Engine) ListOrders(ctx context.Context) ([]Order, error) {
	return e.repo.List(ctx)
}

func (e *Engine) GetOrder(ctx context.Context, id int64) (*Order, []LineItem, error) {
	return e.repo.Get(ctx, id)
}
