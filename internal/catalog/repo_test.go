package catalog

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

func TestTranslateItemWrite(t *testing.T) {
	fk := func(name string) error {
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503", ConstraintName: name})
	}

	err := translateItemWrite(fk("item_supplier_id_fkey"), "create item")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.EqualError(t, err, "supplier not found")

	err = translateItemWrite(fk("item_category_id_fkey"), "update item")
	assert.EqualError(t, err, "category not found")

	err = translateItemWrite(fk("order_item_item_id_fkey"), "update item")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	assert.NoError(t, translateItemWrite(nil, "create item"))
}
