package http

import (
	"context"
	"net/http"
	"time"
)

type ProductService interface {
	DeleteProduct(ctx context.Context, productID int64) error
}

type ProductHandler struct {
	products ProductService
	orders   OrderService
	timeout  time.Duration
}

func NewProductHandler(products ProductService, orders OrderService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		products: products,
		orders:   orders,
		timeout:  timeout,
	}
}

type ProductsResponse struct {
	Products []SelectableProductDTO `json:"products"`
}

// GET /api/v1/products lists products that can be ordered, by name.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sel, err := h.orders.NewSelector(ctx, nil)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: convertSelectable(sel.Items())})
}

// DELETE /api/v1/products/{product_id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, err := idParam(r, "product_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return
	}

	if err := h.products.DeleteProduct(ctx, productID); err != nil {
		handleServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
