package http

import (
	"fmt"
	"time"

	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/fjod/shoes_shop/internal/selector"
	"github.com/fjod/shoes_shop/internal/service"
	"github.com/shopspring/decimal"
)

const dateFormat = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type LineRequestDTO struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity"`
}

type OrderRequestDTO struct {
	CustomerID    int64            `json:"customer_id"`
	StatusID      int64            `json:"status_id"`
	PickupPointID int64            `json:"pickup_point_id"`
	OrderDate     string           `json:"order_date"`
	DeliveryDate  string           `json:"delivery_date"`
	PickupCode    string           `json:"pickup_code" validate:"max=9"`
	Items         []LineRequestDTO `json:"items" validate:"dive"`
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return nil, fmt.Errorf("%s must be formatted as YYYY-MM-DD", field)
	}
	return &t, nil
}

func (req *OrderRequestDTO) form() (service.OrderForm, error) {
	orderDate, err := parseDate("order_date", req.OrderDate)
	if err != nil {
		return service.OrderForm{}, err
	}
	deliveryDate, err := parseDate("delivery_date", req.DeliveryDate)
	if err != nil {
		return service.OrderForm{}, err
	}
	return service.OrderForm{
		CustomerID:    req.CustomerID,
		StatusID:      req.StatusID,
		PickupPointID: req.PickupPointID,
		OrderDate:     orderDate,
		DeliveryDate:  deliveryDate,
		PickupCode:    req.PickupCode,
	}, nil
}

func picks(lines []LineRequestDTO) []service.Pick {
	out := make([]service.Pick, 0, len(lines))
	for _, l := range lines {
		out = append(out, service.Pick{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out
}

type LineItemDTO struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

type OrderResponseDTO struct {
	ID                 int64         `json:"id"`
	OrderDate          string        `json:"order_date"`
	DeliveryDate       string        `json:"delivery_date"`
	PickupCode         int           `json:"pickup_code"`
	CustomerID         int64         `json:"customer_id"`
	CustomerName       string        `json:"customer_name"`
	StatusID           int64         `json:"status_id"`
	Status             string        `json:"status"`
	PickupPointID      int64         `json:"pickup_point_id"`
	PickupPointAddress string        `json:"pickup_point_address"`
	Items              []LineItemDTO `json:"items"`
	Total              string        `json:"total"`
}

func convertLineItems(items []domain.LineItem) []LineItemDTO {
	out := make([]LineItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, LineItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   money(item.UnitPrice),
			Total:       money(item.Total()),
		})
	}
	return out
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	return OrderResponseDTO{
		ID:                 o.ID,
		OrderDate:          o.OrderDate.Format(dateFormat),
		DeliveryDate:       o.DeliveryDate.Format(dateFormat),
		PickupCode:         o.PickupCode,
		CustomerID:         o.CustomerID,
		CustomerName:       o.CustomerName,
		StatusID:           o.StatusID,
		Status:             o.StatusName,
		PickupPointID:      o.PickupPointID,
		PickupPointAddress: o.PickupPointAddress,
		Items:              convertLineItems(o.Items),
		Total:              money(o.Total()),
	}
}

type SelectableRequestDTO struct {
	Exclude []int64 `json:"exclude"`
	Query   string  `json:"q" validate:"max=100"`
}

type SelectableProductDTO struct {
	ProductID    int64  `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Manufacturer string `json:"manufacturer"`
	Price        string `json:"price"`
	Stock        int    `json:"stock"`
	Quantity     int    `json:"quantity"`
}

func convertSelectable(items []selector.Item) []SelectableProductDTO {
	out := make([]SelectableProductDTO, 0, len(items))
	for _, item := range items {
		p := item.Product
		out = append(out, SelectableProductDTO{
			ProductID:    p.ID,
			SKU:          p.SKU,
			Name:         p.Name,
			Description:  p.Description,
			Category:     p.Category,
			Manufacturer: p.Manufacturer,
			Price:        money(p.Price),
			Stock:        p.Stock,
			Quantity:     item.Quantity,
		})
	}
	return out
}

type SelectionRequestDTO struct {
	Exclude []int64          `json:"exclude"`
	Items   []LineRequestDTO `json:"items" validate:"dive"`
}

type SelectionResponseDTO struct {
	Items []LineItemDTO `json:"items"`
	Total string        `json:"total"`
}

type LoginRequestDTO struct {
	Login    string `json:"login" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

type UserDTO struct {
	ID          int64    `json:"id"`
	FullName    string   `json:"full_name,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type LoginResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}
