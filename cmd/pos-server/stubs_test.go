package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MikeMC777/pos-backoffice/internal/admin"
	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
	"github.com/MikeMC777/pos-backoffice/internal/order"
	"github.com/MikeMC777/pos-backoffice/internal/report"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

//
// ---------- STUBS ----------
//

// stubOrders records what the handlers pass to the order engine.
type stubOrders struct {
	lastCart   order.CreateOrderInput
	lastHeader order.HeaderInput
	lastLine   order.LineInput
	lastStatus string
	lastQty    int
	cartCalls  int

	receipt *order.Receipt
	order   *order.Order
	lines   []order.LineItem
	err     error
}

func (s *stubOrders) CreateOrder(_ context.Context, in order.CreateOrderInput) (*order.Receipt, error) {
	s.cartCalls++
	s.lastCart = in
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func (s *stubOrders) CreateOrderHeader(_ context.Context, in order.HeaderInput) (*order.Order, error) {
	s.lastHeader = in
	if s.err != nil {
		return nil, s.err
	}
	return &order.Order{ID: 11, CustomerID: in.CustomerID, AdminName: in.AdminName, Total: in.Total}, nil
}

func (s *stubOrders) AddLine(_ context.Context, in order.LineInput) (*order.LineItem, error) {
	s.lastLine = in
	if s.err != nil {
		return nil, s.err
	}
	return &order.LineItem{ID: 1, OrderID: in.OrderID, ItemID: in.ItemID, Quantity: in.Quantity}, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, id int64, status, _ string) (*order.Order, error) {
	s.lastStatus = status
	if s.err != nil {
		return nil, s.err
	}
	return &order.Order{ID: id, Status: order.Status(status)}, nil
}

func (s *stubOrders) DeleteOrder(context.Context, int64, string) error { return s.err }

func (s *stubOrders) ListOrders(context.Context) ([]order.Order, error) {
	if s.order == nil {
		return []order.Order{}, s.err
	}
	return []order.Order{*s.order}, s.err
}

func (s *stubOrders) GetOrder(context.Context, int64) (*order.Order, []order.LineItem, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.order, s.lines, nil
}

func (s *stubOrders) RestockItem(_ context.Context, id int64, qty int, _ string) (*catalog.Item, error) {
	s.lastQty = qty
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.Item{ID: id, Quantity: qty, ReorderThreshold: 4}, nil
}

func (s *stubOrders) SetItemQuantity(_ context.Context, id int64, qty int, _ string) (*catalog.Item, error) {
	s.lastQty = qty
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.Item{ID: id, Quantity: qty}, nil
}

// stubCatalog implements catalog.Repository in memory.
type stubCatalog struct {
	items      map[int64]*catalog.Item
	categories map[int64]*catalog.Category
	suppliers  map[int64]*catalog.Supplier
	next       int64
	deleteErr  error
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		items:      map[int64]*catalog.Item{},
		categories: map[int64]*catalog.Category{},
		suppliers:  map[int64]*catalog.Supplier{},
	}
}

func (s *stubCatalog) id() int64 {
	s.next++
	return s.next
}

func (s *stubCatalog) GetItem(_ context.Context, id int64) (*catalog.Item, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound("item")
	}
	cp := *it
	return &cp, nil
}

func (s *stubCatalog) ListItems(context.Context) ([]catalog.Item, error) {
	out := make([]catalog.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// refsExist mimics the item foreign keys.
func (s *stubCatalog) refsExist(it *catalog.Item) error {
	if it.CategoryID != nil && s.categories[*it.CategoryID] == nil {
		return apperr.NotFound("category")
	}
	if it.SupplierID != nil && s.suppliers[*it.SupplierID] == nil {
		return apperr.NotFound("supplier")
	}
	return nil
}

func (s *stubCatalog) CreateItem(_ context.Context, it *catalog.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	if err := s.refsExist(it); err != nil {
		return err
	}
	it.ID = s.id()
	cp := *it
	s.items[it.ID] = &cp
	return nil
}

func (s *stubCatalog) UpdateItem(_ context.Context, id int64, req catalog.UpdateItemRequest) (*catalog.Item, error) {
	cur, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound("item")
	}
	it := *cur
	req.Apply(&it)
	if err := it.Validate(); err != nil {
		return nil, err
	}
	if err := s.refsExist(&it); err != nil {
		return nil, err
	}
	s.items[id] = &it
	cp := it
	return &cp, nil
}

func (s *stubCatalog) DeleteItem(_ context.Context, id int64) (*catalog.Item, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	it, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound("item")
	}
	delete(s.items, id)
	return it, nil
}

func (s *stubCatalog) Restock(context.Context, int64, int) (*catalog.StockChange, error) {
	return nil, apperr.Internal("not used", nil)
}

func (s *stubCatalog) SetQuantity(context.Context, int64, int) (*catalog.StockChange, error) {
	return nil, apperr.Internal("not used", nil)
}

func (s *stubCatalog) ListCategories(context.Context) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCatalog) CreateCategory(_ context.Context, c *catalog.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.ID = s.id()
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *stubCatalog) UpdateCategory(_ context.Context, c *catalog.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, ok := s.categories[c.ID]; !ok {
		return apperr.NotFound("category")
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *stubCatalog) DeleteCategory(_ context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.categories[id]; !ok {
		return apperr.NotFound("category")
	}
	delete(s.categories, id)
	return nil
}

func (s *stubCatalog) ListSuppliers(context.Context) ([]catalog.Supplier, error) {
	out := make([]catalog.Supplier, 0, len(s.suppliers))
	for _, v := range s.suppliers {
		out = append(out, *v)
	}
	return out, nil
}

func (s *stubCatalog) CreateSupplier(_ context.Context, v *catalog.Supplier) error {
	if err := v.Validate(); err != nil {
		return err
	}
	v.ID = s.id()
	cp := *v
	s.suppliers[v.ID] = &cp
	return nil
}

func (s *stubCatalog) UpdateSupplier(_ context.Context, v *catalog.Supplier) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if _, ok := s.suppliers[v.ID]; !ok {
		return apperr.NotFound("supplier")
	}
	cp := *v
	s.suppliers[v.ID] = &cp
	return nil
}

func (s *stubCatalog) DeleteSupplier(_ context.Context, id int64) error {
	if _, ok := s.suppliers[id]; !ok {
		return apperr.NotFound("supplier")
	}
	delete(s.suppliers, id)
	return nil
}

// stubCustomers implements customer.Repository in memory.
type stubCustomers struct {
	rows      map[int64]*customer.Customer
	next      int64
	deleteErr error
}

func newStubCustomers() *stubCustomers {
	return &stubCustomers{rows: map[int64]*customer.Customer{}}
}

func (s *stubCustomers) GetByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("customer")
	}
	cp := *c
	return &cp, nil
}

func (s *stubCustomers) List(context.Context) ([]customer.Customer, error) {
	out := make([]customer.Customer, 0, len(s.rows))
	for _, c := range s.rows {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCustomers) Create(_ context.Context, c *customer.Customer) error {
	if err := c.Validate(false); err != nil {
		return err
	}
	s.next++
	c.ID = s.next
	cp := *c
	s.rows[c.ID] = &cp
	return nil
}

func (s *stubCustomers) Update(_ context.Context, c *customer.Customer) error {
	if err := c.Validate(false); err != nil {
		return err
	}
	cp := *c
	s.rows[c.ID] = &cp
	return nil
}

func (s *stubCustomers) Delete(_ context.Context, id int64) (*customer.Customer, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	c, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("customer")
	}
	delete(s.rows, id)
	return c, nil
}

type stubAdmins struct {
	created []admin.CreateAdminRequest
	err     error
}

func (s *stubAdmins) Create(_ context.Context, in admin.CreateAdminRequest) (*admin.Admin, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, in)
	return &admin.Admin{ID: int64(len(s.created)), FirstName: in.FirstName, LastName: in.LastName, Email: in.Email}, nil
}

func (s *stubAdmins) Get(_ context.Context, id int64) (*admin.Admin, error) {
	if id < 1 || int(id) > len(s.created) {
		return nil, apperr.NotFound("admin")
	}
	in := s.created[id-1]
	return &admin.Admin{ID: id, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email}, nil
}

func (s *stubAdmins) List(context.Context) ([]admin.Admin, error) {
	out := make([]admin.Admin, 0, len(s.created))
	for i, in := range s.created {
		out = append(out, admin.Admin{ID: int64(i + 1), FirstName: in.FirstName, LastName: in.LastName})
	}
	return out, nil
}

// stubAudit keeps entries in order; Record is synchronous here.
type stubAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *stubAudit) Record(description, actor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, audit.Entry{
		ID: int64(len(s.entries) + 1), Description: description, CreatedBy: actor, DateTime: time.Now(),
	})
}

func (s *stubAudit) List(context.Context) ([]audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.entries...), nil
}

func (s *stubAudit) last() audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return audit.Entry{}
	}
	return s.entries[len(s.entries)-1]
}

type stubReports struct {
	month time.Time
	err   error
}

func (s *stubReports) Dashboard(_ context.Context, month time.Time) (*report.Dashboard, error) {
	s.month = month
	if s.err != nil {
		return nil, s.err
	}
	return &report.Dashboard{Month: month.Format("2006-01"), TotalOrders: 2}, nil
}

func (s *stubReports) Invoice(_ context.Context, id int64) (*report.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &report.Invoice{OrderID: id, CustomerName: "Juan Cruz", TotalQuantity: 3}, nil
}

func (s *stubReports) LowStock(context.Context) ([]report.LowStockItem, error) {
	return []report.LowStockItem{{ID: 2, Description: "Oil 1L", Quantity: 1, ReorderThreshold: 2}}, s.err
}

type stubHealth struct{ serving bool }

func (s stubHealth) Serving(context.Context) bool { return s.serving }

//
// ---------- HELPERS ----------
//

type fixture struct {
	orders    *stubOrders
	catalog   *stubCatalog
	customers *stubCustomers
	admins    *stubAdmins
	audit     *stubAudit
	reports   *stubReports
	router    *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:    &stubOrders{},
		catalog:   newStubCatalog(),
		customers: newStubCustomers(),
		admins:    &stubAdmins{},
		audit:     &stubAudit{},
		reports:   &stubReports{},
	}
	f.router = newRouter(deps{
		orders:    f.orders,
		catalog:   f.catalog,
		customers: f.customers,
		admins:    f.admins,
		audit:     f.audit,
		reports:   f.reports,
		health:    stubHealth{serving: true},
		log:       zap.NewNop(),
	})
	return f
}

func (f *fixture) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type errorBody struct {
	Error     string `json:"error"`
	Details   string `json:"details"`
	Available *int   `json:"available"`
	Unit      string `json:"unit"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json response: %v; body=%s", err, w.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("invalid data: %v; body=%s", err, w.Body.String())
		}
	}
	return env
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("invalid json response: %v; body=%s", err, w.Body.String())
	}
	return e
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
