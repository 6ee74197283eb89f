package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fjod/shoes_shop/internal/cache"
	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/fjod/shoes_shop/internal/publisher"
	"github.com/fjod/shoes_shop/internal/repository"
	"github.com/fjod/shoes_shop/internal/selector"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Pick is one product choice coming from the operator.
type Pick struct {
	ProductID int64
	Quantity  int
}

type FormOptions struct {
	Customers    []domain.User        `json:"customers"`
	Statuses     []domain.Status      `json:"statuses"`
	PickupPoints []domain.PickupPoint `json:"pickup_points"`
}

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	users     repository.UserRepository
	cache     cache.OrderCache
	publisher publisher.Publisher
	sfg       singleflight.Group
	tracer    trace.Tracer

	// generations counts invalidations per order; a cache fill is dropped
	// when the order was invalidated while it was being loaded.
	genMu       sync.Mutex
	generations map[int64]uint64
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	orderCache cache.OrderCache,
	pub publisher.Publisher,
) *OrderService {
	return &OrderService{
		orders:      orders,
		products:    products,
		users:       users,
		cache:       orderCache,
		publisher:   pub,
		tracer:      otel.Tracer("github.com/fjod/shoes_shop/internal/service"),
		generations: make(map[int64]uint64),
	}
}

func (s *OrderService) FormOptions(ctx context.Context) (*FormOptions, error) {
	customers, err := s.users.ListUsersByRole(ctx, domain.RoleCustomer)
	if err != nil {
		return nil, &PersistenceError{Op: "load customers", Err: err}
	}
	statuses, err := s.orders.ListStatuses(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load order statuses", Err: err}
	}
	points, err := s.orders.ListPickupPoints(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load pickup points", Err: err}
	}
	return &FormOptions{Customers: customers, Statuses: statuses, PickupPoints: points}, nil
}

// NewSelector opens a product selector over in-stock products not already on the order.
func (s *OrderService) NewSelector(ctx context.Context, excluded []int64) (*selector.Selector, error) {
	products, err := s.products.ListProductsInStock(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load products", Err: err}
	}
	return selector.New(products, excluded), nil
}

// ConfirmSelection runs picks through a fresh selector and returns the confirmed
// quantities together with the picked products.
func (s *OrderService) ConfirmSelection(ctx context.Context, excluded []int64, picks []Pick) (map[int64]int, map[int64]domain.Product, error) {
	sel, err := s.NewSelector(ctx, excluded)
	if err != nil {
		return nil, nil, err
	}
	for _, pick := range picks {
		if err := sel.Toggle(pick.ProductID, true); err != nil {
			return nil, nil, fmt.Errorf("product %d: %w", pick.ProductID, err)
		}
		if err := sel.SetQuantity(pick.ProductID, pick.Quantity); err != nil {
			return nil, nil, fmt.Errorf("product %d: %w", pick.ProductID, err)
		}
	}

	selection, err := sel.Confirm()
	if err != nil {
		return nil, nil, err
	}

	products := make(map[int64]domain.Product, len(selection))
	for _, item := range sel.Items() {
		if _, ok := selection[item.Product.ID]; ok {
			products[item.Product.ID] = item.Product
		}
	}
	return selection, products, nil
}

// ApplyLines makes the editor lines match the requested ones. Lines already on
// the order keep their snapshot price; new products go through the selector.
func (s *OrderService) ApplyLines(ctx context.Context, editor *OrderEditor, lines []Pick) error {
	requested := make(map[int64]int, len(lines))
	var added []Pick
	current := make(map[int64]struct{})
	for _, id := range editor.ExcludedProductIDs() {
		current[id] = struct{}{}
	}

	for _, line := range lines {
		if _, dup := requested[line.ProductID]; dup {
			return &ValidationError{
				Field:   "items",
				Message: fmt.Sprintf("product %d is listed more than once", line.ProductID),
			}
		}
		requested[line.ProductID] = line.Quantity
		if _, ok := current[line.ProductID]; !ok {
			added = append(added, line)
		}
	}

	var (
		selection map[int64]int
		products  map[int64]domain.Product
	)
	if len(added) > 0 {
		var err error
		selection, products, err = s.ConfirmSelection(ctx, editor.ExcludedProductIDs(), added)
		if err != nil {
			return err
		}
	}

	for id := range current {
		qty, ok := requested[id]
		if !ok {
			editor.RemoveItem(id)
			continue
		}
		if err := editor.SetQuantity(id, qty); err != nil {
			return err
		}
	}
	editor.AddSelection(selection, products)
	return nil
}

// EditorFor opens an editor on a stored order.
func (s *OrderService) EditorFor(ctx context.Context, orderID int64) (*OrderEditor, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load order", Err: err}
	}
	return EditOrder(order), nil
}

// Save validates the editor and persists it in one transaction. The editor is
// only updated (it learns its new id) once the store has accepted the order.
func (s *OrderService) Save(ctx context.Context, editor *OrderEditor) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Save")
	defer span.End()

	order, err := editor.Build()
	if err != nil {
		return nil, err
	}

	if editor.IsNew() {
		id, errCreate := s.orders.CreateOrder(ctx, order)
		if errCreate != nil {
			span.SetStatus(codes.Error, errCreate.Error())
			slog.ErrorContext(ctx, "create order failed", "error", errCreate)
			return nil, &PersistenceError{Op: "save order", Err: errCreate}
		}
		order.ID = id
		editor.orderID = id
	} else {
		if errReplace := s.orders.ReplaceOrder(ctx, order); errReplace != nil {
			span.SetStatus(codes.Error, errReplace.Error())
			slog.ErrorContext(ctx, "replace order failed", "order_id", order.ID, "error", errReplace)
			return nil, &PersistenceError{Op: "save order", Err: errReplace}
		}
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.Int("order.items", len(order.Items)))

	s.invalidate(ctx, order.ID)
	s.publish(ctx, publisher.NewOrderSaved(order))
	slog.InfoContext(ctx, "order saved", "order_id", order.ID, "items", len(order.Items), "total", order.Total().String())

	saved, err := s.orders.GetOrderByID(ctx, order.ID)
	if err != nil {
		slog.WarnContext(ctx, "reload saved order failed", "order_id", order.ID, "error", err)
		return order, nil
	}
	return saved, nil
}

// Delete removes the order together with its line items.
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return err
		}
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "delete order failed", "order_id", orderID, "error", err)
		return &PersistenceError{Op: "delete order", Err: err}
	}

	s.invalidate(ctx, orderID)
	s.publish(ctx, publisher.NewOrderDeleted(orderID))
	slog.InfoContext(ctx, "order deleted", "order_id", orderID)
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(orderID, 10), func() (interface{}, error) {
		order, err := s.cache.Get(ctx, orderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.WarnContext(ctx, "cache get error", "order_id", orderID, "error", err)
		}

		gen := s.generation(orderID)
		order, errGet := s.orders.GetOrderByID(ctx, orderID)
		if errGet != nil {
			if errors.Is(errGet, repository.ErrOrderNotFound) {
				return nil, errGet
			}
			return nil, &PersistenceError{Op: "load order", Err: errGet}
		}

		if s.generation(orderID) != gen {
			slog.DebugContext(ctx, "order changed during load, skipping cache fill", "order_id", orderID)
			return order, nil
		}
		if errSet := s.cache.Set(ctx, order); errSet != nil {
			slog.WarnContext(ctx, "cache set error", "order_id", orderID, "error", errSet)
		}
		return order, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Order), nil
}

// ListOrders returns all orders, newest order date first.
func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "load orders", Err: err}
	}
	return orders, nil
}

func (s *OrderService) Summary(ctx context.Context, orderID int64) (string, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Summary(), nil
}

func (s *OrderService) generation(orderID int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[orderID]
}

func (s *OrderService) invalidate(ctx context.Context, orderID int64) {
	s.genMu.Lock()
	s.generations[orderID]++
	s.genMu.Unlock()

	if err := s.cache.Delete(ctx, orderID); err != nil {
		slog.WarnContext(ctx, "cache invalidate error", "order_id", orderID, "error", err)
	}
}

func (s *OrderService) publish(ctx context.Context, event publisher.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish order event failed", "event_type", event.Type, "order_id", event.OrderID, "error", err)
	}
}
