package order

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-backoffice/internal/admin"
	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
)

// memDB is an in-memory stand-in for Postgres. Create applies the same
// check-then-decrement rule as the SQL conditional UPDATE under one lock.
type memDB struct {
	mu        sync.Mutex
	items     map[int64]*catalog.Item
	customers map[int64]*customer.Customer
	admins    map[int64]*admin.Admin
	orders    map[int64]*Order
	lines     map[int64][]LineItem
	seq       int64
}

func newMemDB() *memDB {
	return &memDB{
		items:     map[int64]*catalog.Item{},
		customers: map[int64]*customer.Customer{},
		admins:    map[int64]*admin.Admin{},
		orders:    map[int64]*Order{},
		lines:     map[int64][]LineItem{},
	}
}

func (m *memDB) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *memDB) addItem(desc, unit, price string, qty, threshold int) *catalog.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := &catalog.Item{
		ID: m.nextID(), Description: desc, Unit: unit,
		Price: decimal.RequireFromString(price), Quantity: qty, ReorderThreshold: threshold,
	}
	m.items[it.ID] = it
	return it
}

func (m *memDB) addCustomer(name string) *customer.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &customer.Customer{ID: m.nextID(), Name: name, Address: "1 Main St", Email: "c@shop.com"}
	m.customers[c.ID] = c
	return c
}

func (m *memDB) addAdmin(first, last string) *admin.Admin {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &admin.Admin{ID: m.nextID(), FirstName: first, LastName: last, Email: first + "@store.ph"}
	m.admins[a.ID] = a
	return a
}

func (m *memDB) stock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Quantity
}

func (m *memDB) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memDB) customerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.customers)
}

// Catalog

func (m *memDB) GetItem(_ context.Context, id int64) (*catalog.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("item")
	}
	cp := *it
	return &cp, nil
}

func (m *memDB) Restock(_ context.Context, id int64, quantity int) (*catalog.StockChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("item")
	}
	ch := &catalog.StockChange{Before: *it}
	it.Quantity = quantity
	it.ReorderThreshold++
	ch.After = *it
	return ch, nil
}

func (m *memDB) SetQuantity(_ context.Context, id int64, quantity int) (*catalog.StockChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("item")
	}
	ch := &catalog.StockChange{Before: *it}
	it.Quantity = quantity
	ch.After = *it
	return ch, nil
}

// Repository

func (m *memDB) Create(_ context.Context, o *Order, lines []LineItem, nc *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range lines {
		it, ok := m.items[l.ItemID]
		if !ok {
			return apperr.NotFound("item")
		}
		if it.Quantity < l.Quantity {
			return &apperr.Error{Kind: apperr.KindConflict, Msg: "stock changed", Available: it.Quantity, Unit: it.Unit}
		}
	}
	for _, l := range lines {
		m.items[l.ItemID].Quantity -= l.Quantity
	}

	now := time.Now()
	if nc != nil {
		nc.ID = m.nextID()
		nc.CreatedAt, nc.UpdatedAt = now, now
		cp := *nc
		m.customers[nc.ID] = &cp
		o.CustomerID, o.CustomerName = nc.ID, nc.Name
	}
	o.ID = m.nextID()
	o.CreatedAt, o.UpdatedAt = now, now
	for i := range lines {
		lines[i].ID = m.nextID()
		lines[i].OrderID = o.ID
	}
	cp := *o
	m.orders[o.ID] = &cp
	m.lines[o.ID] = append([]LineItem(nil), lines...)
	return nil
}

func (m *memDB) Get(_ context.Context, id int64) (*Order, []LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil, apperr.NotFound("order")
	}
	cp := *o
	return &cp, append([]LineItem{}, m.lines[id]...), nil
}

func (m *memDB) List(_ context.Context) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Order{}
	for _, o := range m.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (m *memDB) UpdateStatus(_ context.Context, id int64, status Status) (Status, *Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return "", nil, apperr.NotFound("order")
	}
	prev := o.Status
	switch {
	case status == StatusCancelled:
		o.Total = decimal.Zero
	case prev == StatusCancelled:
		o.Total = sumSubtotals(m.lines[id])
	}
	o.Status = status
	cp := *o
	return prev, &cp, nil
}

func (m *memDB) Delete(_ context.Context, id int64) (*Order, []LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil, apperr.NotFound("order")
	}
	lines := m.lines[id]
	delete(m.orders, id)
	delete(m.lines, id)
	return o, lines, nil
}

func (m *memDB) CreateHeader(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.nextID()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memDB) AddLine(_ context.Context, l *LineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[l.OrderID]; !ok {
		return apperr.Conflict("order %d does not exist", l.OrderID)
	}
	l.ID = m.nextID()
	m.lines[l.OrderID] = append(m.lines[l.OrderID], *l)
	return nil
}

type memCustomers struct{ db *memDB }

func (c memCustomers) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	cu, ok := c.db.customers[id]
	if !ok {
		return nil, apperr.NotFound("customer")
	}
	cp := *cu
	return &cp, nil
}

type memAdmins struct{ db *memDB }

func (a memAdmins) GetByID(_ context.Context, id int64) (*admin.Admin, error) {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	ad, ok := a.db.admins[id]
	if !ok {
		return nil, apperr.NotFound("admin")
	}
	cp := *ad
	return &cp, nil
}

type recordingSink struct {
	mu      sync.Mutex
	entries []string
	actors  []string
}

func (s *recordingSink) Record(description, actor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, description)
	s.actors = append(s.actors, actor)
}

func (s *recordingSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

// memIdempotency mirrors the Redis store: a key is pending until completed.
type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemIdempotency() *memIdempotency { return &memIdempotency{keys: map[string]string{}} }

func (s *memIdempotency) Reserve(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.keys[key]
	if !ok {
		s.keys[key] = "pending"
		return 0, false, nil
	}
	if v == "pending" {
		return 0, false, apperr.Conflict("request with this Idempotency-Key is in progress")
	}
	id, _ := strconv.ParseInt(v, 10, 64)
	return id, true, nil
}

func (s *memIdempotency) Complete(_ context.Context, key string, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = strconv.FormatInt(orderID, 10)
	return nil
}

func (s *memIdempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memIdempotency) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}
