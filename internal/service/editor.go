package service

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderForm holds the header fields as the operator entered them.
// Zero ids and nil dates mean "not chosen yet".
type OrderForm struct {
	CustomerID    int64
	StatusID      int64
	PickupPointID int64
	OrderDate     *time.Time
	DeliveryDate  *time.Time
	PickupCode    string
}

// OrderEditor composes a new order or edits an existing one.
// Nothing is persisted until the order service saves it.
type OrderEditor struct {
	orderID int64
	Form    OrderForm
	items   *domain.LineItems
}

func NewOrderEditor() *OrderEditor {
	return &OrderEditor{items: domain.NewLineItems()}
}

// EditOrder loads a stored order. Its lines keep their price snapshots.
func EditOrder(order *domain.Order) *OrderEditor {
	orderDate := order.OrderDate
	deliveryDate := order.DeliveryDate
	return &OrderEditor{
		orderID: order.ID,
		Form: OrderForm{
			CustomerID:    order.CustomerID,
			StatusID:      order.StatusID,
			PickupPointID: order.PickupPointID,
			OrderDate:     &orderDate,
			DeliveryDate:  &deliveryDate,
			PickupCode:    strconv.Itoa(order.PickupCode),
		},
		items: domain.NewLineItems(order.Items...),
	}
}

func (e *OrderEditor) IsNew() bool {
	return e.orderID == 0
}

func (e *OrderEditor) OrderID() int64 {
	return e.orderID
}

// ExcludedProductIDs are the products the selector must not offer again.
func (e *OrderEditor) ExcludedProductIDs() []int64 {
	return e.items.ProductIDs()
}

// AddSelection appends confirmed selector results. Products already on the
// order and ids missing from products are skipped.
func (e *OrderEditor) AddSelection(selection map[int64]int, products map[int64]domain.Product) int {
	ids := make([]int64, 0, len(selection))
	for id := range selection {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	added := 0
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			continue
		}
		if e.items.Add(p, selection[id]) {
			added++
		}
	}
	return added
}

func (e *OrderEditor) RemoveItem(productID int64) bool {
	return e.items.Remove(productID)
}

func (e *OrderEditor) SetQuantity(productID int64, quantity int) error {
	return e.items.SetQuantity(productID, quantity)
}

func (e *OrderEditor) Items() []domain.LineItem {
	return e.items.Items()
}

func (e *OrderEditor) Total() decimal.Decimal {
	return e.items.Total()
}

// Validate checks the form in a fixed order and reports the first failure.
func (e *OrderEditor) Validate() error {
	f := e.Form
	switch {
	case f.CustomerID <= 0:
		return &ValidationError{Field: "customer_id", Message: "select a customer"}
	case f.StatusID <= 0:
		return &ValidationError{Field: "status_id", Message: "select an order status"}
	case f.PickupPointID <= 0:
		return &ValidationError{Field: "pickup_point_id", Message: "select a pickup point"}
	case f.OrderDate == nil:
		return &ValidationError{Field: "order_date", Message: "enter the order date"}
	case f.DeliveryDate == nil:
		return &ValidationError{Field: "delivery_date", Message: "enter the delivery date"}
	case f.DeliveryDate.Before(*f.OrderDate):
		return &ValidationError{Field: "delivery_date", Message: "delivery date cannot be earlier than order date"}
	}

	if _, ok := parsePickupCode(f.PickupCode); !ok {
		return &ValidationError{Field: "pickup_code", Message: "enter a valid pickup code (positive integer)"}
	}

	if e.items.Len() == 0 {
		return &ValidationError{Field: "items", Message: "add at least one product to the order"}
	}
	for _, item := range e.items.Items() {
		if item.Quantity <= 0 {
			return &ValidationError{
				Field:   "items",
				Message: fmt.Sprintf("product '%s' must have a positive quantity", item.ProductName),
			}
		}
	}
	return nil
}

// Build validates the editor and returns the order to persist.
func (e *OrderEditor) Build() (*domain.Order, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	code, _ := parsePickupCode(e.Form.PickupCode)
	return &domain.Order{
		ID:            e.orderID,
		OrderDate:     *e.Form.OrderDate,
		DeliveryDate:  *e.Form.DeliveryDate,
		PickupCode:    code,
		CustomerID:    e.Form.CustomerID,
		StatusID:      e.Form.StatusID,
		PickupPointID: e.Form.PickupPointID,
		Items:         e.items.Items(),
	}, nil
}

func parsePickupCode(s string) (int, bool) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || code <= 0 {
		return 0, false
	}
	return code, true
}
