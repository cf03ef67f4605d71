//go:build integration

package order

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/MikeMC777/pos-backoffice/internal/admin"
	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
	"github.com/MikeMC777/pos-backoffice/internal/database"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "pos",
				"POSTGRES_PASSWORD": "pos",
				"POSTGRES_DB":       "posdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, fmt.Sprintf("postgres://pos:pos@%s:%s/posdb?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}

type pgFixture struct {
	pool     *pgxpool.Pool
	orders   *PGRepo
	catalog  *catalog.PGRepo
	customer *customer.Customer
	admin    *admin.Admin
	rice     *catalog.Item
	oil      *catalog.Item
	engine   *Engine
	recorder *audit.Recorder
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	ctx := context.Background()
	pool := startPostgres(t)
	f := &pgFixture{
		pool:    pool,
		orders:  NewPGRepo(pool, 10*time.Second),
		catalog: catalog.NewPGRepo(pool, 10*time.Second),
	}

	f.rice = &catalog.Item{Unit: "sack", Description: "Rice 25kg", Price: decimal.RequireFromString("50.00"), Quantity: 10, ReorderThreshold: 3}
	f.oil = &catalog.Item{Unit: "bottle", Description: "Oil 1L", Price: decimal.RequireFromString("30.00"), Quantity: 5, ReorderThreshold: 2}
	require.NoError(t, f.catalog.CreateItem(ctx, f.rice))
	require.NoError(t, f.catalog.CreateItem(ctx, f.oil))

	f.customer = &customer.Customer{Name: "Juan Cruz", Address: "12 Rizal St", Email: "juan.cruz@mail.com", Number: "09171234567"}
	require.NoError(t, customer.Insert(ctx, pool, f.customer))

	admins := admin.NewPGRepo(pool, 10*time.Second)
	hash, err := admin.HashPassword("s3cret-pass")
	require.NoError(t, err)
	f.admin = &admin.Admin{FirstName: "Maria", LastName: "Santos", Email: "maria@store.ph", PasswordHash: hash}
	require.NoError(t, admins.Create(ctx, f.admin))

	f.recorder = audit.NewRecorder(audit.NewPGStore(pool), zap.NewNop(), 5*time.Second)
	t.Cleanup(f.recorder.Close)
	f.engine = NewEngine(f.orders, f.catalog, customer.NewPGRepo(pool, 10*time.Second), admins, f.recorder, zap.NewNop())
	return f
}

func (f *pgFixture) quantity(t *testing.T, id int64) int {
	t.Helper()
	it, err := f.catalog.GetItem(context.Background(), id)
	require.NoError(t, err)
	return it.Quantity
}

func (f *pgFixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func (f *pgFixture) cart(entries ...CartEntry) CreateOrderInput {
	return CreateOrderInput{
		Cart:       entries,
		CustomerID: f.customer.ID,
		AdminID:    f.admin.ID,
		OrderDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:     "pending",
		Actor:      "Maria Santos",
	}
}

func TestPG_CreateOrderDecrementsStockAndAudits(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	rc, err := f.engine.CreateOrder(ctx, f.cart(
		CartEntry{ItemID: f.rice.ID, Quantity: 2},
		CartEntry{ItemID: f.oil.ID, Quantity: 1},
	))
	require.NoError(t, err)
	assert.True(t, rc.Order.Total.Equal(decimal.NewFromInt(130)), "total %s", rc.Order.Total)
	assert.Equal(t, "Maria Santos", rc.Order.AdminName)
	assert.Equal(t, "Juan Cruz", rc.Order.CustomerName)

	assert.Equal(t, 8, f.quantity(t, f.rice.ID))
	assert.Equal(t, 4, f.quantity(t, f.oil.ID))

	o, lines, err := f.orders.Get(ctx, rc.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, lines, 2)
	assert.Equal(t, "Rice 25kg", lines[0].Description)
	assert.True(t, lines[0].Subtotal.Equal(decimal.NewFromInt(100)))

	f.recorder.Close()
	entries, err := f.recorder.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].Description, fmt.Sprintf("Order created: #%d", rc.Order.ID))
	assert.Equal(t, "Maria Santos", entries[0].CreatedBy)
}

func TestPG_ShortStockRollsBackEverything(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	o := &Order{
		CustomerName: "ignored", AdminName: "Maria Santos", Status: StatusPending,
		OrderDate: time.Now().UTC(), Total: decimal.NewFromInt(230),
	}
	lines := []LineItem{
		{ItemID: f.rice.ID, Quantity: 2, UnitPrice: f.rice.Price, Subtotal: decimal.NewFromInt(100), Description: f.rice.Description, Unit: f.rice.Unit},
		{ItemID: f.oil.ID, Quantity: 6, UnitPrice: f.oil.Price, Subtotal: decimal.NewFromInt(180), Description: f.oil.Description, Unit: f.oil.Unit},
	}
	inline := &customer.Customer{Name: "Ana Reyes", Address: "3 Mabini St", Email: "ana@mail.com", Number: "09181234567"}

	err := f.orders.Create(ctx, o, lines, inline)
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, e.Kind)
	assert.Equal(t, 5, e.Available)
	assert.Equal(t, "bottle", e.Unit)

	assert.Equal(t, 10, f.quantity(t, f.rice.ID))
	assert.Equal(t, 5, f.quantity(t, f.oil.ID))
	assert.Equal(t, 0, f.count(t, `"order"`))
	assert.Equal(t, 0, f.count(t, "order_item"))
	assert.Equal(t, 1, f.count(t, "customer"))
}

func TestPG_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	var ok, short atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.CreateOrder(ctx, f.cart(CartEntry{ItemID: f.oil.ID, Quantity: 1}))
			switch {
			case err == nil:
				ok.Add(1)
			case apperr.Is(err, apperr.KindInsufficientStock), apperr.Is(err, apperr.KindConflict):
				short.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), ok.Load())
	assert.Equal(t, int32(15), short.Load())
	assert.Equal(t, 0, f.quantity(t, f.oil.ID))
	assert.Equal(t, 5, f.count(t, "order_item"))
}

func TestPG_CancelZeroesTotalAndRestoresIt(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	rc, err := f.engine.CreateOrder(ctx, f.cart(CartEntry{ItemID: f.rice.ID, Quantity: 3}))
	require.NoError(t, err)

	prev, o, err := f.orders.UpdateStatus(ctx, rc.Order.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, prev)
	assert.True(t, o.Total.IsZero())
	assert.Equal(t, 7, f.quantity(t, f.rice.ID), "cancel must not restock")

	_, o, err = f.orders.UpdateStatus(ctx, rc.Order.ID, StatusProcessing)
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(150)), "total %s", o.Total)

	_, _, err = f.orders.UpdateStatus(ctx, 9999, StatusShipped)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPG_DeleteCascadesLines(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	rc, err := f.engine.CreateOrder(ctx, f.cart(
		CartEntry{ItemID: f.rice.ID, Quantity: 1},
		CartEntry{ItemID: f.oil.ID, Quantity: 1},
	))
	require.NoError(t, err)

	o, lines, err := f.orders.Delete(ctx, rc.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, rc.Order.ID, o.ID)
	assert.Len(t, lines, 2)
	assert.Equal(t, 0, f.count(t, "order_item"))
	assert.Equal(t, 9, f.quantity(t, f.rice.ID))

	_, _, err = f.orders.Delete(ctx, rc.Order.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = customer.NewPGRepo(f.pool, time.Second).Delete(ctx, f.customer.ID)
	assert.NoError(t, err, "customer without orders can be deleted")
}

func TestPG_ReferencedRowsAreProtected(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	_, err := f.engine.CreateOrder(ctx, f.cart(CartEntry{ItemID: f.rice.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = f.catalog.DeleteItem(ctx, f.rice.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	_, err = customer.NewPGRepo(f.pool, time.Second).Delete(ctx, f.customer.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
}

func TestPG_RestockRaisesThreshold(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	ch, err := f.catalog.Restock(ctx, f.oil.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 5, ch.Before.Quantity)
	assert.Equal(t, 40, ch.After.Quantity)
	assert.Equal(t, 3, ch.After.ReorderThreshold)

	ch, err = f.catalog.SetQuantity(ctx, f.oil.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 3, ch.After.ReorderThreshold)
}

func TestPG_ItemEditKeepsConcurrentStockDecrement(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	// An order holds its decrement uncommitted while the edit starts.
	tx, err := f.pool.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `UPDATE item SET quantity = quantity - 2 WHERE item_id = $1`, f.rice.ID)
	require.NoError(t, err)

	desc := "Rice 25kg premium"
	var edited *catalog.Item
	done := make(chan error, 1)
	go func() {
		var err error
		edited, err = f.catalog.UpdateItem(ctx, f.rice.ID, catalog.UpdateItemRequest{Description: &desc})
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("edit finished while the decrement was still open: %v", err)
	case <-time.After(300 * time.Millisecond):
	}
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, <-done)

	assert.Equal(t, desc, edited.Description)
	assert.Equal(t, 8, edited.Quantity)
	assert.Equal(t, 8, f.quantity(t, f.rice.ID))
}

func TestPG_ItemWithUnknownReferenceIsNotFound(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()

	missing := int64(9999)
	it := &catalog.Item{Unit: "pc", Description: "Soap", Price: decimal.RequireFromString("12.00"), Quantity: 4, SupplierID: &missing}
	err := f.catalog.CreateItem(ctx, it)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
	assert.EqualError(t, err, "supplier not found")

	_, err = f.catalog.UpdateItem(ctx, f.rice.ID, catalog.UpdateItemRequest{CategoryID: &missing})
	assert.EqualError(t, err, "category not found")
	assert.Equal(t, 10, f.quantity(t, f.rice.ID))
}
