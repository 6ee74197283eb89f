// Package selector holds the state of the product picker used while composing an order.
package selector

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fjod/shoes_shop/internal/domain"
)

const DefaultQuantity = 1

var (
	ErrNothingSelected = errors.New("select at least one product")
	ErrUnknownProduct  = errors.New("product is not selectable")
)

type InvalidItem struct {
	ProductID int64
	Name      string
	Available int
}

// InvalidQuantityError lists every selected product whose quantity is outside 1..stock.
type InvalidQuantityError struct {
	Items []InvalidItem
}

func (e *InvalidQuantityError) Error() string {
	lines := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		lines = append(lines, fmt.Sprintf("%s: available %d", item.Name, item.Available))
	}
	return "invalid quantity for:\n" + strings.Join(lines, "\n")
}

type Item struct {
	Product  domain.Product `json:"product"`
	Selected bool           `json:"selected"`
	Quantity int            `json:"quantity"`
}

// Selectable returns the products that may be offered: in stock, not excluded, ordered by name.
func Selectable(products []domain.Product, excluded []int64) []domain.Product {
	skip := make(map[int64]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, ok := skip[p.ID]; ok || !p.InStock() {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Product) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}

type Selector struct {
	items   []Item
	index   map[int64]int
	visible []int
}

func New(products []domain.Product, excluded []int64) *Selector {
	selectable := Selectable(products, excluded)
	s := &Selector{
		items: make([]Item, len(selectable)),
		index: make(map[int64]int, len(selectable)),
	}
	for i, p := range selectable {
		s.items[i] = Item{Product: p, Quantity: DefaultQuantity}
		s.index[p.ID] = i
	}
	s.Filter("")
	return s
}

func (s *Selector) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Visible returns the items matching the current filter.
func (s *Selector) Visible() []Item {
	out := make([]Item, 0, len(s.visible))
	for _, i := range s.visible {
		out = append(out, s.items[i])
	}
	return out
}

// Filter narrows the visible items. Selection and quantities of hidden items are kept.
func (s *Selector) Filter(text string) {
	needle := strings.ToLower(strings.TrimSpace(text))
	s.visible = s.visible[:0]
	for i, item := range s.items {
		if needle == "" || matches(item.Product, needle) {
			s.visible = append(s.visible, i)
		}
	}
}

func matches(p domain.Product, needle string) bool {
	for _, field := range []string{p.Name, p.Description, p.SKU, p.Category, p.Manufacturer} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (s *Selector) Toggle(productID int64, selected bool) error {
	i, ok := s.index[productID]
	if !ok {
		return ErrUnknownProduct
	}
	s.items[i].Selected = selected
	return nil
}

func (s *Selector) SetQuantity(productID int64, quantity int) error {
	i, ok := s.index[productID]
	if !ok {
		return ErrUnknownProduct
	}
	s.items[i].Quantity = quantity
	return nil
}

// Confirm returns the chosen quantities keyed by product id.
// It fails without touching the state if nothing is selected or any quantity is out of range.
func (s *Selector) Confirm() (map[int64]int, error) {
	var invalid []InvalidItem
	selection := make(map[int64]int)
	for _, item := range s.items {
		if !item.Selected {
			continue
		}
		if item.Quantity <= 0 || item.Quantity > item.Product.Stock {
			invalid = append(invalid, InvalidItem{
				ProductID: item.Product.ID,
				Name:      item.Product.Name,
				Available: item.Product.Stock,
			})
			continue
		}
		selection[item.Product.ID] = item.Quantity
	}

	if len(invalid) > 0 {
		return nil, &InvalidQuantityError{Items: invalid}
	}
	if len(selection) == 0 {
		return nil, ErrNothingSelected
	}
	return selection, nil
}
