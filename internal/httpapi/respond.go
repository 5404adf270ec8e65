package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/deadpool750/list7/internal/checkout"
	"github.com/deadpool750/list7/internal/domain"
	"github.com/deadpool750/list7/internal/identity"
	"github.com/deadpool750/list7/internal/wallet"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError maps the service sentinels onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, identity.ErrAuthFailed):
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case errors.Is(err, identity.ErrEmailTaken):
		httpStatus = http.StatusConflict
		code = "email_taken"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, wallet.ErrInvalidAmount):
		httpStatus = http.StatusBadRequest
		code = "invalid_request"
	case errors.Is(err, domain.ErrNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, domain.ErrOutOfStock):
		httpStatus = http.StatusConflict
		code = "out_of_stock"
	case errors.Is(err, domain.ErrInsufficientBalance), errors.Is(err, wallet.ErrCardDeclined):
		httpStatus = http.StatusPaymentRequired
		code = "payment_failed"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
	case errors.Is(err, domain.ErrRemoteFetch), errors.Is(err, domain.ErrRemoteWrite):
		httpStatus = http.StatusBadGateway
		code = "upstream_error"
	default:
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
	}

	respondError(w, httpStatus, code, err.Error())
}
