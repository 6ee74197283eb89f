package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fjod/shoes_shop/internal/repository"
)

type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// DeleteProduct refuses to remove a product that is still on any order.
func (s *ProductService) DeleteProduct(ctx context.Context, productID int64) error {
	n, err := s.products.CountProductLineItems(ctx, productID)
	if err != nil {
		return &PersistenceError{Op: "delete product", Err: err}
	}
	if n > 0 {
		return repository.ErrProductInUse
	}

	if err := s.products.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductInUse) || errors.Is(err, repository.ErrProductNotFound) {
			return err
		}
		slog.ErrorContext(ctx, "delete product failed", "product_id", productID, "error", err)
		return &PersistenceError{Op: "delete product", Err: err}
	}
	slog.InfoContext(ctx, "product deleted", "product_id", productID)
	return nil
}
