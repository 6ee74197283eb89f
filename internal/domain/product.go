package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Manufacturer string          `json:"manufacturer"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
}

// InStock reports whether at least one unit can be put on an order.
func (p Product) InStock() bool {
	return p.Stock > 0
}
