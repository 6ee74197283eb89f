package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/shoes_shop/internal/repository"
	"github.com/fjod/shoes_shop/internal/selector"
	"github.com/fjod/shoes_shop/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondErrorDetails(w, status, code, message, "")
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// handleServiceError maps service and store errors to HTTP responses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		vErr *service.ValidationError
		qErr *selector.InvalidQuantityError
		pErr *service.PersistenceError
	)

	switch {
	case errors.As(err, &vErr):
		respondErrorDetails(w, http.StatusUnprocessableEntity, "validation_failed", vErr.Message, vErr.Field)
	case errors.As(err, &qErr):
		respondError(w, http.StatusUnprocessableEntity, "invalid_quantity", qErr.Error())
	case errors.Is(err, selector.ErrNothingSelected):
		respondError(w, http.StatusUnprocessableEntity, "nothing_selected", err.Error())
	case errors.Is(err, selector.ErrUnknownProduct):
		respondError(w, http.StatusUnprocessableEntity, "product_not_selectable", err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, repository.ErrProductInUse):
		respondError(w, http.StatusConflict, "product_in_use", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.As(err, &pErr):
		slog.ErrorContext(ctx, "persistence failure", "error", err)
		respondError(w, http.StatusInternalServerError, "persistence_error", pErr.Error())
	default:
		slog.ErrorContext(ctx, "unhandled error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
