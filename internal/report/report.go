// Package report holds the read-only projections behind the dashboard, the invoice
// page and the low-stock list.
package report

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/database"
)

// swagger:model
type DailyRevenue struct {
	Day     string          `db:"day"     json:"day"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue" swaggertype:"string"`
}

// swagger:model
type Dashboard struct {
	Month          string          `json:"month"`
	TotalRevenue   decimal.Decimal `db:"total_revenue"   json:"total_revenue" swaggertype:"string"`
	TotalOrders    int             `db:"total_orders"    json:"total_orders"`
	TotalItems     int             `db:"total_items"     json:"total_items"`
	TotalSuppliers int             `db:"total_suppliers" json:"total_suppliers"`
	RevenuePerDay  []DailyRevenue  `json:"revenue_per_day"`
}

// swagger:model
type InvoiceLine struct {
	ID          int64           `db:"order_item_id" json:"order_item_id"`
	ItemID      int64           `db:"item_id"       json:"item_id"`
	Description string          `db:"description"   json:"description"`
	Unit        string          `db:"unit"          json:"unit"`
	Quantity    int             `db:"quantity"      json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"    json:"unit_price" swaggertype:"string"`
	Subtotal    decimal.Decimal `db:"subtotal"      json:"subtotal" swaggertype:"string"`
}

// swagger:model
type Invoice struct {
	OrderID         int64           `db:"order_id"          json:"order_id"`
	OrderDate       time.Time       `db:"order_date"        json:"order_date"`
	Status          string          `db:"order_status"      json:"order_status"`
	Total           decimal.Decimal `db:"order_total_price" json:"order_total_price" swaggertype:"string"`
	AdminName       string          `db:"admin_name"        json:"admin_name"`
	CustomerName    string          `db:"customer_name"     json:"customer_name"`
	CustomerAddress string          `db:"customer_address"  json:"customer_address"`
	CustomerEmail   string          `db:"customer_email"    json:"customer_email"`
	CustomerNumber  string          `db:"customer_number"   json:"customer_number"`
	Lines           []InvoiceLine   `json:"lines"`
	TotalQuantity   int             `json:"total_quantity"`
}

// swagger:model
type LowStockItem struct {
	ID               int64  `db:"item_id"           json:"item_id"`
	Description      string `db:"description"       json:"description"`
	Unit             string `db:"unit"              json:"unit"`
	Quantity         int    `db:"quantity"          json:"quantity"`
	ReorderThreshold int    `db:"reorder_threshold" json:"reorder_threshold"`
}

// OpenDB exposes the shared pool through database/sql for sqlx.
func OpenDB(pool *pgxpool.Pool) *sqlx.DB {
	return sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
}

type Reader struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewReader(db *sqlx.DB, timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Reader{db: db, timeout: timeout}
}

// ParseMonth parses YYYY-MM. An empty string means the current month.
func ParseMonth(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}

func (r *Reader) Dashboard(ctx context.Context, month time.Time) (*Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var d Dashboard
	err := r.db.GetContext(ctx, &d, `
		SELECT
			(SELECT COALESCE(SUM(order_total_price), 0)::text FROM "order") AS total_revenue,
			(SELECT COUNT(*) FROM "order")    AS total_orders,
			(SELECT COUNT(*) FROM item)       AS total_items,
			(SELECT COUNT(*) FROM supplier)   AS total_suppliers
	`)
	if err != nil {
		return nil, database.Translate(err, "dashboard totals", "dashboard")
	}

	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	d.Month = start.Format("2006-01")
	d.RevenuePerDay = []DailyRevenue{}
	err = r.db.SelectContext(ctx, &d.RevenuePerDay, `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS day,
		       SUM(order_total_price)::text           AS revenue
		FROM "order"
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1
	`, start, start.AddDate(0, 1, 0))
	if err != nil {
		return nil, database.Translate(err, "dashboard revenue", "dashboard")
	}
	return &d, nil
}

func (r *Reader) Invoice(ctx context.Context, orderID int64) (*Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var inv Invoice
	err := r.db.GetContext(ctx, &inv, `
		SELECT o.order_id, o.order_date, o.order_status, o.order_total_price::text AS order_total_price,
		       o.admin_name, o.customer_name,
		       COALESCE(c.customer_address, '') AS customer_address,
		       COALESCE(c.customer_email, '')   AS customer_email,
		       COALESCE(c.customer_number, '')  AS customer_number
		FROM "order" o
		LEFT JOIN customer c ON c.customer_id = o.customer_id
		WHERE o.order_id = $1
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order")
	}
	if err != nil {
		return nil, database.Translate(err, "invoice header", "order")
	}

	inv.Lines = []InvoiceLine{}
	err = r.db.SelectContext(ctx, &inv.Lines, `
		SELECT order_item_id, item_id, description, unit, quantity,
		       unit_price::text AS unit_price, subtotal::text AS subtotal
		FROM order_item
		WHERE order_id = $1
		ORDER BY order_item_id
	`, orderID)
	if err != nil {
		return nil, database.Translate(err, "invoice lines", "order line")
	}
	for _, l := range inv.Lines {
		inv.TotalQuantity += l.Quantity
	}
	return &inv, nil
}

// LowStock lists items at or under their reorder threshold, most depleted first.
func (r *Reader) LowStock(ctx context.Context) ([]LowStockItem, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out := []LowStockItem{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT item_id, description, unit, quantity, reorder_threshold
		FROM item
		WHERE quantity <= reorder_threshold
		ORDER BY quantity - reorder_threshold, item_id
	`)
	if err != nil {
		return nil, database.Translate(err, "low stock", "item")
	}
	return out, nil
}
