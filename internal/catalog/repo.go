// Package catalog provides the repository interface and PostgreSQL implementation for
// inventory items, categories and suppliers.
package catalog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
	"github.com/MikeMC777/pos-backoffice/internal/database"
)

type Repository interface {
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	CreateItem(ctx context.Context, it *Item) error
	UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) (*Item, error)
	DeleteItem(ctx context.Context, id int64) (*Item, error)
	Restock(ctx context.Context, id int64, quantity int) (*StockChange, error)
	SetQuantity(ctx context.Context, id int64, quantity int) (*StockChange, error)

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateSupplier(ctx context.Context, s *Supplier) error
	UpdateSupplier(ctx context.Context, s *Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error
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

const itemColumns = `item_id, unit, description, price::text, quantity, reorder_threshold,
	category_id, supplier_id, created_at, updated_at`

func scanItem(row pgx.Row, it *Item) error {
	return row.Scan(&it.ID, &it.Unit, &it.Description, &it.Price, &it.Quantity, &it.ReorderThreshold,
		&it.CategoryID, &it.SupplierID, &it.CreatedAt, &it.UpdatedAt)
}

func (r *PGRepo) GetItem(ctx context.Context, id int64) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var it Item
	if err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM item WHERE item_id=$1`, id), &it); err != nil {
		return nil, database.Translate(err, "get item", "item")
	}
	return &it, nil
}

func (r *PGRepo) ListItems(ctx context.Context) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM item ORDER BY updated_at DESC`)
	if err != nil {
		return nil, database.Translate(err, "list items", "item")
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var it Item
		if err := scanItem(rows, &it); err != nil {
			return nil, database.Translate(err, "list items", "item")
		}
		out = append(out, it)
	}
	return out, database.Translate(rows.Err(), "list items", "item")
}

func (r *PGRepo) CreateItem(ctx context.Context, it *Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO item (unit, description, price, quantity, reorder_threshold, category_id, supplier_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING item_id, created_at, updated_at
	`, it.Unit, it.Description, it.Price, it.Quantity, it.ReorderThreshold, it.CategoryID, it.SupplierID,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	return translateItemWrite(err, "create item")
}

// UpdateItem applies req to the locked row, so stock moved by a concurrent order
// is never written back with a stale value.
func (r *PGRepo) UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, database.Translate(err, "update item", "item")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var it Item
	if err := scanItem(tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM item WHERE item_id=$1 FOR UPDATE`, id), &it); err != nil {
		return nil, database.Translate(err, "update item", "item")
	}
	req.Apply(&it)
	if err := it.Validate(); err != nil {
		return nil, err
	}

	err = scanItem(tx.QueryRow(ctx, `
		UPDATE item
		SET unit = $2, description = $3, price = $4, quantity = $5, reorder_threshold = $6,
		    category_id = $7, supplier_id = $8, updated_at = NOW()
		WHERE item_id = $1
		RETURNING `+itemColumns,
		it.ID, it.Unit, it.Description, it.Price, it.Quantity, it.ReorderThreshold, it.CategoryID, it.SupplierID,
	), &it)
	if err != nil {
		return nil, translateItemWrite(err, "update item")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, database.Translate(err, "update item", "item")
	}
	return &it, nil
}

// translateItemWrite reports a dangling category or supplier reference as not found.
func translateItemWrite(err error, op string) error {
	switch name, _ := database.ForeignKey(err); name {
	case "item_category_id_fkey":
		return apperr.NotFound("category")
	case "item_supplier_id_fkey":
		return apperr.NotFound("supplier")
	}
	return database.Translate(err, op, "item")
}

// DeleteItem returns the removed row. Items referenced by order lines cannot be deleted.
func (r *PGRepo) DeleteItem(ctx context.Context, id int64) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var it Item
	if err := scanItem(r.db.QueryRow(ctx, `DELETE FROM item WHERE item_id=$1 RETURNING `+itemColumns, id), &it); err != nil {
		return nil, database.Translate(err, "delete item", "item")
	}
	return &it, nil
}

// Restock sets the absolute quantity and raises the reorder threshold by one.
func (r *PGRepo) Restock(ctx context.Context, id int64, quantity int) (*StockChange, error) {
	return r.writeQuantity(ctx, "restock item", `
		UPDATE item
		SET quantity = $2, reorder_threshold = reorder_threshold + 1, updated_at = NOW()
		WHERE item_id = $1
		RETURNING `+itemColumns, id, quantity)
}

// SetQuantity overwrites the quantity and leaves the threshold alone.
func (r *PGRepo) SetQuantity(ctx context.Context, id int64, quantity int) (*StockChange, error) {
	return r.writeQuantity(ctx, "set item quantity", `
		UPDATE item
		SET quantity = $2, updated_at = NOW()
		WHERE item_id = $1
		RETURNING `+itemColumns, id, quantity)
}

func (r *PGRepo) writeQuantity(ctx context.Context, op, update string, id int64, quantity int) (*StockChange, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity must be non-negative")
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, database.Translate(err, op, "item")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ch StockChange
	if err := scanItem(tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM item WHERE item_id=$1 FOR UPDATE`, id), &ch.Before); err != nil {
		return nil, database.Translate(err, op, "item")
	}
	if err := scanItem(tx.QueryRow(ctx, update, id, quantity), &ch.After); err != nil {
		return nil, database.Translate(err, op, "item")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, database.Translate(err, op, "item")
	}
	return &ch, nil
}
