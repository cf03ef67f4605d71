package order

import (
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/pos-backoffice/internal/catalog"
)

// mergeCart folds repeated item ids into one entry, keeping first-seen order.
func mergeCart(cart []CartEntry) []CartEntry {
	idx := make(map[int64]int, len(cart))
	out := make([]CartEntry, 0, len(cart))
	for _, e := range cart {
		if i, ok := idx[e.ItemID]; ok {
			out[i].Quantity += e.Quantity
			continue
		}
		idx[e.ItemID] = len(out)
		out = append(out, e)
	}
	return out
}

func priceLine(it *catalog.Item, quantity int) LineItem {
	return LineItem{
		ItemID:      it.ID,
		Quantity:    quantity,
		UnitPrice:   it.Price,
		Subtotal:    it.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Description: it.Description,
		Unit:        it.Unit,
	}
}

func sumSubtotals(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}
