package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/fjod/shoes_shop/internal/selector"
	"github.com/fjod/shoes_shop/internal/service"
)

type OrderService interface {
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	Summary(ctx context.Context, orderID int64) (string, error)
	FormOptions(ctx context.Context) (*service.FormOptions, error)
	NewSelector(ctx context.Context, excluded []int64) (*selector.Selector, error)
	ConfirmSelection(ctx context.Context, excluded []int64, picks []service.Pick) (map[int64]int, map[int64]domain.Product, error)
	EditorFor(ctx context.Context, orderID int64) (*service.OrderEditor, error)
	ApplyLines(ctx context.Context, editor *service.OrderEditor, lines []service.Pick) error
	Save(ctx context.Context, editor *service.OrderEditor) (*domain.Order, error)
	Delete(ctx context.Context, orderID int64) error
}

type OrdersHandler struct {
	orders      OrderService
	timeout     time.Duration
	maxBodySize int64
}

func NewOrdersHandler(orders OrderService, timeout time.Duration, maxBodySize int64) *OrdersHandler {
	return &OrdersHandler{
		orders:      orders,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := idParam(r, "order_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", err.Error())
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, convertOrder(order))
}

// GET /api/v1/orders/{order_id}/summary
func (h *OrdersHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := idParam(r, "order_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", err.Error())
		return
	}

	summary, err := h.orders.Summary(ctx, orderID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// GET /api/v1/orders/form-options
func (h *OrdersHandler) FormOptions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	opts, err := h.orders.FormOptions(ctx)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, opts)
}

// POST /api/v1/orders/selectable-products
func (h *OrdersHandler) SelectableProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SelectableRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sel, err := h.orders.NewSelector(ctx, req.Exclude)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	sel.Filter(req.Query)
	respondJSON(w, http.StatusOK, convertSelectable(sel.Visible()))
}

// POST /api/v1/orders/selection
func (h *OrdersHandler) ConfirmSelection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SelectionRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	selection, products, err := h.orders.ConfirmSelection(ctx, req.Exclude, picks(req.Items))
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	preview := service.NewOrderEditor()
	preview.AddSelection(selection, products)
	respondJSON(w, http.StatusOK, SelectionResponseDTO{
		Items: convertLineItems(preview.Items()),
		Total: money(preview.Total()),
	})
}

// POST /api/v1/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req OrderRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	form, err := req.form()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	editor := service.NewOrderEditor()
	editor.Form = form
	h.save(ctx, w, editor, req.Items, http.StatusCreated)
}

// PUT /api/v1/orders/{order_id}
func (h *OrdersHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := idParam(r, "order_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", err.Error())
		return
	}

	var req OrderRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	form, err := req.form()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	editor, err := h.orders.EditorFor(ctx, orderID)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	editor.Form = form
	h.save(ctx, w, editor, req.Items, http.StatusOK)
}

func (h *OrdersHandler) save(ctx context.Context, w http.ResponseWriter, editor *service.OrderEditor, lines []LineRequestDTO, status int) {
	if err := h.orders.ApplyLines(ctx, editor, picks(lines)); err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	order, err := h.orders.Save(ctx, editor)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, status, convertOrder(order))
}

// DELETE /api/v1/orders/{order_id}
func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID, err := idParam(r, "order_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", err.Error())
		return
	}

	if err := h.orders.Delete(ctx, orderID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
