package order

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
	"github.com/MikeMC777/pos-backoffice/internal/database"
)

type Repository interface {
	// Create writes the optional new customer, the order, its lines and the stock
	// decrements in one transaction. IDs and timestamps are filled in on success.
	Create(ctx context.Context, o *Order, lines []LineItem, newCustomer *customer.Customer) error
	Get(ctx context.Context, id int64) (*Order, []LineItem, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (previous Status, o *Order, err error)
	Delete(ctx context.Context, id int64) (*Order, []LineItem, error)
	CreateHeader(ctx context.Context, o *Order) error
	AddLine(ctx context.Context, l *LineItem) error
}

type PGRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPGRepo(db *pgxpool.Pool, timeout time.Duration) *PGRepo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PGRepo{db: db, timeout: timeout}
}

const orderColumns = `order_id, customer_id, customer_name, admin_name, order_date, order_status,
	order_total_price::text, created_at, updated_at`

const lineColumns = `order_item_id, order_id, item_id, quantity, unit_price::text, subtotal::text,
	description, unit, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.AdminName, &o.OrderDate, &o.Status,
		&o.Total, &o.CreatedAt, &o.UpdatedAt)
}

func scanLine(row pgx.Row, l *LineItem) error {
	return row.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Quantity, &l.UnitPrice, &l.Subtotal,
		&l.Description, &l.Unit, &l.CreatedAt, &l.UpdatedAt)
}

func insertOrder(ctx context.Context, q database.DBTX, o *Order) error {
	return q.QueryRow(ctx, `
		INSERT INTO "order" (customer_id, customer_name, admin_name, order_date, order_status, order_total_price, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING order_id, created_at, updated_at
	`, o.CustomerID, o.CustomerName, o.AdminName, o.OrderDate, o.Status, o.Total,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func insertLine(ctx context.Context, q database.DBTX, l *LineItem) error {
	return q.QueryRow(ctx, `
		INSERT INTO order_item (order_id, item_id, quantity, unit_price, subtotal, description, unit, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING order_item_id, created_at, updated_at
	`, l.OrderID, l.ItemID, l.Quantity, l.UnitPrice, l.Subtotal, l.Description, l.Unit,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *PGRepo) Create(ctx context.Context, o *Order, lines []LineItem, newCustomer *customer.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return database.Translate(err, "create order", "order")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if newCustomer != nil {
		if err := customer.Insert(ctx, tx, newCustomer); err != nil {
			return err
		}
		o.CustomerID = newCustomer.ID
		o.CustomerName = newCustomer.Name
	}

	if err := insertOrder(ctx, tx, o); err != nil {
		return database.Translate(err, "create order", "order")
	}
	for i := range lines {
		lines[i].OrderID = o.ID
		if err := insertLine(ctx, tx, &lines[i]); err != nil {
			return database.Translate(err, "create order line", "order line")
		}
	}

	// Decrement in item id order so two overlapping carts lock rows in the same order.
	byItem := make([]LineItem, len(lines))
	copy(byItem, lines)
	sort.Slice(byItem, func(i, j int) bool { return byItem[i].ItemID < byItem[j].ItemID })
	for _, l := range byItem {
		if err := decrementStock(ctx, tx, l); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Translate(err, "create order", "order")
	}
	return nil
}

// decrementStock only succeeds while enough stock remains. Zero affected rows means
// the item vanished or another order took the stock since it was checked.
func decrementStock(ctx context.Context, tx pgx.Tx, l LineItem) error {
	tag, err := tx.Exec(ctx, `
		UPDATE item SET quantity = quantity - $1, updated_at = NOW()
		WHERE item_id = $2 AND quantity >= $1
	`, l.Quantity, l.ItemID)
	if err != nil {
		return database.Translate(err, "decrement stock", "item")
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var available int
	if err := tx.QueryRow(ctx, `SELECT quantity FROM item WHERE item_id=$1`, l.ItemID).Scan(&available); err != nil {
		return database.Translate(err, "decrement stock", "item")
	}
	return &apperr.Error{
		Kind:      apperr.KindConflict,
		Msg:       "stock for " + l.Description + " changed while the order was placed",
		Available: available,
		Unit:      l.Unit,
	}
}

func (r *PGRepo) Get(ctx context.Context, id int64) (*Order, []LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var o Order
	if err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM "order" WHERE order_id=$1`, id), &o); err != nil {
		return nil, nil, database.Translate(err, "get order", "order")
	}
	lines, err := listLines(ctx, r.db, id)
	if err != nil {
		return nil, nil, err
	}
	return &o, lines, nil
}

func listLines(ctx context.Context, q database.DBTX, orderID int64) ([]LineItem, error) {
	rows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM order_item WHERE order_id=$1 ORDER BY order_item_id`, orderID)
	if err != nil {
		return nil, database.Translate(err, "list order lines", "order line")
	}
	defer rows.Close()

	lines := []LineItem{}
	for rows.Next() {
		var l LineItem
		if err := scanLine(rows, &l); err != nil {
			return nil, database.Translate(err, "list order lines", "order line")
		}
		lines = append(lines, l)
	}
	return lines, database.Translate(rows.Err(), "list order lines", "order line")
}

func (r *PGRepo) List(ctx context.Context) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM "order" ORDER BY order_date DESC, order_id DESC`)
	if err != nil {
		return nil, database.Translate(err, "list orders", "order")
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, database.Translate(err, "list orders", "order")
		}
		out = append(out, o)
	}
	return out, database.Translate(rows.Err(), "list orders", "order")
}

// UpdateStatus zeroes the total on cancel and restores it from the lines when an
// order leaves cancelled.
func (r *PGRepo) UpdateStatus(ctx context.Context, id int64, status Status) (Status, *Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", nil, database.Translate(err, "update order status", "order")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur Order
	if err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM "order" WHERE order_id=$1 FOR UPDATE`, id), &cur); err != nil {
		return "", nil, database.Translate(err, "update order status", "order")
	}

	total := cur.Total
	switch {
	case status == StatusCancelled:
		total = decimal.Zero
	case cur.Status == StatusCancelled:
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(subtotal), 0)::text FROM order_item WHERE order_id=$1`, id,
		).Scan(&total); err != nil {
			return "", nil, database.Translate(err, "update order status", "order")
		}
	}

	var out Order
	if err := scanOrder(tx.QueryRow(ctx, `
		UPDATE "order" SET order_status = $2, order_total_price = $3, updated_at = NOW()
		WHERE order_id = $1
		RETURNING `+orderColumns, id, status, total), &out); err != nil {
		return "", nil, database.Translate(err, "update order status", "order")
	}
	if err := tx.Commit(ctx); err != nil {
		return "", nil, database.Translate(err, "update order status", "order")
	}
	return cur.Status, &out, nil
}

// Delete removes the order and its lines together. Stock is not returned.
func (r *PGRepo) Delete(ctx context.Context, id int64) (*Order, []LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, database.Translate(err, "delete order", "order")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o Order
	if err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM "order" WHERE order_id=$1 FOR UPDATE`, id), &o); err != nil {
		return nil, nil, database.Translate(err, "delete order", "order")
	}
	lines, err := listLines(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_item WHERE order_id=$1`, id); err != nil {
		return nil, nil, database.Translate(err, "delete order lines", "order line")
	}
	tag, err := tx.Exec(ctx, `DELETE FROM "order" WHERE order_id=$1`, id)
	if err != nil {
		return nil, nil, database.Translate(err, "delete order", "order")
	}
	if tag.RowsAffected() == 0 {
		return nil, nil, apperr.NotFound("order")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, database.Translate(err, "delete order", "order")
	}
	return &o, lines, nil
}

func (r *PGRepo) CreateHeader(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return database.Translate(insertOrder(ctx, r.db, o), "create order", "order")
}

func (r *PGRepo) AddLine(ctx context.Context, l *LineItem) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return database.Translate(insertLine(ctx, r.db, l), "create order line", "order line")
}
