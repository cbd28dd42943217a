package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError converts errors coming out of the services to HTTP statuses.
func handleDomainError(w http.ResponseWriter, err error, fallback string) {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Code:   "invalid_argument",
			Fields: fields,
		})
		return
	}

	status, code := statusFor(err)
	message := domain.UserMessage(err, fallback)
	if message == "" {
		message = http.StatusText(status)
	}
	respondError(w, status, code, message)
}

func statusFor(err error) (int, string) {
	var se *domain.ServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.As(err, &se):
		switch {
		case se.Status == http.StatusNotFound:
			return http.StatusNotFound, "not_found"
		case se.Status == http.StatusForbidden:
			return http.StatusForbidden, "permission_denied"
		case se.Status == http.StatusConflict:
			return http.StatusConflict, "already_exists"
		case se.Status >= 500:
			return http.StatusBadGateway, "upstream_error"
		default:
			return http.StatusUnprocessableEntity, "rejected"
		}
	case errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway, "bad_upstream_response"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable, "service_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
