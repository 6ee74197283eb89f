package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/shoes_shop/internal/auth"
	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Store          Pinger
	Tokens         *auth.TokenIssuer
	Orders         *OrdersHandler
	Products       *ProductHandler
	Auth           *AuthHandler
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(AuthMiddleware(cfg.Tokens))

	r.Get("/health", healthHandler(cfg.Store, cfg.RequestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", cfg.Auth.Login)
		r.Get("/auth/me", cfg.Auth.Me)

		r.Route("/products", func(r chi.Router) {
			r.With(RequirePermission(domain.PermViewProducts)).Get("/", cfg.Products.Get)
			r.With(RequirePermission(domain.PermEditProducts)).Delete("/{product_id}", cfg.Products.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(RequirePermission(domain.PermViewOrders))
				r.Get("/", cfg.Orders.ListOrders)
				r.Get("/{order_id}", cfg.Orders.GetOrder)
				r.Get("/{order_id}/summary", cfg.Orders.GetSummary)
			})
			r.Group(func(r chi.Router) {
				r.Use(RequirePermission(domain.PermEditOrders))
				r.Get("/form-options", cfg.Orders.FormOptions)
				r.Post("/selectable-products", cfg.Orders.SelectableProducts)
				r.Post("/selection", cfg.Orders.ConfirmSelection)
				r.Post("/", cfg.Orders.CreateOrder)
				r.Put("/{order_id}", cfg.Orders.UpdateOrder)
				r.Delete("/{order_id}", cfg.Orders.DeleteOrder)
			})
		})
	})

	return otelhttp.NewHandler(r, "shoes_shop")
}

func healthHandler(store Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
