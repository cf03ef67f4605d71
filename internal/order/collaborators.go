package order

import (
	"context"

	"github.com/MikeMC777/pos-backoffice/internal/admin"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
)

// Catalog is the part of the catalog store the engine reads and restocks through.
type Catalog interface {
	GetItem(ctx context.Context, id int64) (*catalog.Item, error)
	Restock(ctx context.Context, id int64, quantity int) (*catalog.StockChange, error)
	SetQuantity(ctx context.Context, id int64, quantity int) (*catalog.StockChange, error)
}

type Customers interface {
	GetByID(ctx context.Context, id int64) (*customer.Customer, error)
}

type Admins interface {
	GetByID(ctx context.Context, id int64) (*admin.Admin, error)
}

// IdempotencyStore deduplicates order submissions that carry the same key.
type IdempotencyStore interface {
	// Reserve claims key. When the key already completed it returns the order id
	// and replay=true. A key that is still in flight is a conflict.
	Reserve(ctx context.Context, key string) (orderID int64, replay bool, err error)
	Complete(ctx context.Context, key string, orderID int64) error
	Release(ctx context.Context, key string) error
}
