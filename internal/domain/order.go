package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type Status struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PickupPoint struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
}

// LineItem is one product on an order. UnitPrice is the price captured when
// the product was added and is never re-read from the catalog.
type LineItem struct {
	ID          int64           `json:"id,omitempty"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Order struct {
	ID                 int64      `json:"id"`
	OrderDate          time.Time  `json:"order_date"`
	DeliveryDate       time.Time  `json:"delivery_date"`
	PickupCode         int        `json:"pickup_code"`
	CustomerID         int64      `json:"customer_id"`
	CustomerName       string     `json:"customer_name,omitempty"`
	StatusID           int64      `json:"status_id"`
	StatusName         string     `json:"status_name,omitempty"`
	PickupPointID      int64      `json:"pickup_point_id"`
	PickupPointAddress string     `json:"pickup_point_address,omitempty"`
	Items              []LineItem `json:"items"`
}

func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

// Summary renders the read-only order view shown to managers.
func (o *Order) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%d\n", o.ID)
	fmt.Fprintf(&b, "Status: %s\n", o.StatusName)
	fmt.Fprintf(&b, "Order date: %s\n", o.OrderDate.Format(dateLayout))
	fmt.Fprintf(&b, "Delivery date: %s\n", o.DeliveryDate.Format(dateLayout))
	fmt.Fprintf(&b, "Customer: %s\n", o.CustomerName)
	fmt.Fprintf(&b, "Pickup code: %d\n", o.PickupCode)
	fmt.Fprintf(&b, "Pickup point: %s\n", o.PickupPointAddress)
	b.WriteString("Items:\n")
	if len(o.Items) == 0 {
		b.WriteString("no items\n")
	}
	for _, item := range o.Items {
		fmt.Fprintf(&b, "%s: %d x %s\n", item.ProductName, item.Quantity, item.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s", o.Total().StringFixed(2))
	return b.String()
}
