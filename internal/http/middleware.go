package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/shoes_shop/internal/auth"
	"github.com/fjod/shoes_shop/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the caller of a request. Anonymous callers are guests.
type Principal struct {
	UserID int64
	Role   domain.Role
}

var guest = Principal{Role: domain.RoleGuest}

func principalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey).(Principal); ok {
		return p
	}
	return guest
}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// AuthMiddleware resolves the bearer token into a principal.
// A missing or unusable token leaves the caller a guest.
func AuthMiddleware(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := guest
			if raw, ok := bearerToken(r); ok {
				claims, err := tokens.Parse(raw)
				if err != nil {
					slog.DebugContext(r.Context(), "ignoring invalid token", "error", err)
				} else {
					p = Principal{UserID: claims.UserID, Role: claims.Role}
				}
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequirePermission rejects callers whose role does not grant perm.
func RequirePermission(perm domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principalFromContext(r.Context())
			if !p.Role.Can(perm) {
				if p.Role == domain.RoleGuest {
					respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in to continue")
					return
				}
				respondError(w, http.StatusForbidden, "permission_denied", "missing permission "+perm.String())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware echoes chi's request id back to the client.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger writes one structured line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
