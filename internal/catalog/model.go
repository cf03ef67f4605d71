package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

// Item is a stocked inventory line.
// swagger:model
type Item struct {
	ID               int64           `json:"item_id"`
	Unit             string          `json:"unit"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price" swaggertype:"string"`
	Quantity         int             `json:"quantity"`
	ReorderThreshold int             `json:"reorder_threshold"`
	CategoryID       *int64          `json:"category_id,omitempty"`
	SupplierID       *int64          `json:"supplier_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LowOnStock reports whether the item is at or under its reorder threshold.
func (it Item) LowOnStock() bool { return it.Quantity <= it.ReorderThreshold }

func (it *Item) Validate() error {
	it.Unit = strings.TrimSpace(it.Unit)
	it.Description = strings.TrimSpace(it.Description)
	switch {
	case it.Unit == "":
		return apperr.Validation("unit is required")
	case it.Description == "":
		return apperr.Validation("description is required")
	case it.Price.IsNegative():
		return apperr.Validation("price must be non-negative")
	case it.Quantity < 0:
		return apperr.Validation("quantity must be non-negative")
	case it.ReorderThreshold < 0:
		return apperr.Validation("reorder_threshold must be non-negative")
	}
	return nil
}

// swagger:model
type Category struct {
	ID        int64     `json:"category_id"`
	Name      string    `json:"category_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.Validation("category_name is required")
	}
	return nil
}

// swagger:model
type Supplier struct {
	ID        int64     `json:"supplier_id"`
	Name      string    `json:"supplier_name"`
	Contact   string    `json:"supplier_contact"`
	Email     string    `json:"supplier_email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Supplier) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Contact = strings.TrimSpace(s.Contact)
	s.Email = strings.TrimSpace(s.Email)
	if s.Name == "" {
		return apperr.Validation("supplier_name is required")
	}
	return nil
}

// StockChange is the before/after picture of a quantity write, kept for the audit trail.
type StockChange struct {
	Before Item
	After  Item
}

// CreateItemRequest payload of creation. Every field is required.
// swagger:model CreateItemRequest
type CreateItemRequest struct {
	Unit             string           `json:"unit"              example:"sack"`
	Description      string           `json:"description"       example:"Rice 25kg"`
	Price            *decimal.Decimal `json:"price"             swaggertype:"string" example:"35.50"`
	Quantity         *int             `json:"quantity"          example:"40"`
	ReorderThreshold *int             `json:"reorder_threshold" example:"5"`
	CategoryID       *int64           `json:"category_id"       example:"1"`
	SupplierID       *int64           `json:"supplier_id"       example:"1"`
}

// Item checks that nothing was omitted and builds the row to insert.
func (r CreateItemRequest) Item() (Item, error) {
	switch {
	case strings.TrimSpace(r.Unit) == "":
		return Item{}, apperr.Validation("unit is required")
	case strings.TrimSpace(r.Description) == "":
		return Item{}, apperr.Validation("description is required")
	case r.Quantity == nil:
		return Item{}, apperr.Validation("quantity is required")
	case r.ReorderThreshold == nil:
		return Item{}, apperr.Validation("reorder_threshold is required")
	case r.CategoryID == nil:
		return Item{}, apperr.Validation("category_id is required")
	case r.Price == nil:
		return Item{}, apperr.Validation("price is required")
	case r.SupplierID == nil:
		return Item{}, apperr.Validation("supplier_id is required")
	}
	it := Item{
		Unit:             r.Unit,
		Description:      r.Description,
		Price:            *r.Price,
		Quantity:         *r.Quantity,
		ReorderThreshold: *r.ReorderThreshold,
		CategoryID:       r.CategoryID,
		SupplierID:       r.SupplierID,
	}
	if err := it.Validate(); err != nil {
		return Item{}, err
	}
	return it, nil
}

// QuantityRequest payload of restock and plain quantity overwrite.
// swagger:model QuantityRequest
type QuantityRequest struct {
	Quantity *int `json:"quantity" example:"60"`
}

// UpdateItemRequest payload of partial update. Omitted fields keep their value.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Unit             *string          `json:"unit"`
	Description      *string          `json:"description"`
	Price            *decimal.Decimal `json:"price" swaggertype:"string"`
	Quantity         *int             `json:"quantity"`
	ReorderThreshold *int             `json:"reorder_threshold"`
	CategoryID       *int64           `json:"category_id"`
	SupplierID       *int64           `json:"supplier_id"`
}

func (r UpdateItemRequest) Apply(it *Item) {
	if r.Unit != nil {
		it.Unit = *r.Unit
	}
	if r.Description != nil {
		it.Description = *r.Description
	}
	if r.Price != nil {
		it.Price = *r.Price
	}
	if r.Quantity != nil {
		it.Quantity = *r.Quantity
	}
	if r.ReorderThreshold != nil {
		it.ReorderThreshold = *r.ReorderThreshold
	}
	if r.CategoryID != nil {
		it.CategoryID = r.CategoryID
	}
	if r.SupplierID != nil {
		it.SupplierID = r.SupplierID
	}
}
