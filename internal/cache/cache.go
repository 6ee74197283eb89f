package cache

import (
	"context"
	"errors"

	"github.com/fjod/shoes_shop/internal/domain"
)

// OrderCache keeps read views of saved orders. The store stays authoritative:
// writers delete the entry after every successful save or delete.
type OrderCache interface {
	Get(ctx context.Context, orderID int64) (*domain.Order, error)
	Set(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, orderID int64) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache is used when no redis address is configured.
type NopCache struct{}

func (NopCache) Get(context.Context, int64) (*domain.Order, error) { return nil, ErrCacheMiss }
func (NopCache) Set(context.Context, *domain.Order) error          { return nil }
func (NopCache) Delete(context.Context, int64) error               { return nil }
