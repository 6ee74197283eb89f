package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/shoes_shop/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
}

type AuthHandler struct {
	auth        AuthService
	timeout     time.Duration
	maxBodySize int64
}

func NewAuthHandler(auth AuthService, timeout time.Duration, maxBodySize int64) *AuthHandler {
	return &AuthHandler{
		auth:        auth,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(w, r, h.maxBodySize, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	token, user, err := h.auth.Login(ctx, req.Login, req.Password)
	if err != nil {
		handleServiceError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, LoginResponseDTO{
		Token: token,
		User: UserDTO{
			ID:          user.ID,
			FullName:    user.FullName,
			Role:        user.Role.String(),
			Permissions: user.Role.Permissions(),
		},
	})
}

// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())
	respondJSON(w, http.StatusOK, UserDTO{
		ID:          p.UserID,
		Role:        p.Role.String(),
		Permissions: p.Role.Permissions(),
	})
}
