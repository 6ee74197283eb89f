package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrLineItemNotFound = errors.New("line item not found")

// LineItems is the editable set of lines of an order being composed.
// A product appears at most once and the total is kept in step with the lines.
type LineItems struct {
	items []LineItem
	total decimal.Decimal
}

func NewLineItems(items ...LineItem) *LineItems {
	li := &LineItems{}
	for _, item := range items {
		if li.Contains(item.ProductID) {
			continue
		}
		li.items = append(li.items, item)
	}
	li.recalculate()
	return li
}

// Add appends the product with its current price as the snapshot.
// It returns false and leaves the collection untouched if the product is already present.
func (li *LineItems) Add(p Product, quantity int) bool {
	if li.Contains(p.ID) {
		return false
	}
	li.items = append(li.items, LineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   p.Price,
	})
	li.recalculate()
	return true
}

func (li *LineItems) Remove(productID int64) bool {
	for i, item := range li.items {
		if item.ProductID == productID {
			li.items = append(li.items[:i], li.items[i+1:]...)
			li.recalculate()
			return true
		}
	}
	return false
}

func (li *LineItems) SetQuantity(productID int64, quantity int) error {
	for i := range li.items {
		if li.items[i].ProductID == productID {
			li.items[i].Quantity = quantity
			li.recalculate()
			return nil
		}
	}
	return ErrLineItemNotFound
}

func (li *LineItems) Contains(productID int64) bool {
	for _, item := range li.items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Items returns a copy of the lines in insertion order.
func (li *LineItems) Items() []LineItem {
	out := make([]LineItem, len(li.items))
	copy(out, li.items)
	return out
}

func (li *LineItems) ProductIDs() []int64 {
	ids := make([]int64, 0, len(li.items))
	for _, item := range li.items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func (li *LineItems) Len() int {
	return len(li.items)
}

func (li *LineItems) Total() decimal.Decimal {
	return li.total
}

func (li *LineItems) recalculate() {
	total := decimal.Zero
	for _, item := range li.items {
		total = total.Add(item.Total())
	}
	li.total = total
}
