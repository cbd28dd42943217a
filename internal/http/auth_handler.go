package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, name, email, password, confirm string) (*domain.User, error)
	Logout()
}

type AuthHandler struct {
	auth     Authenticator
	identity Identity
	timeout  time.Duration
}

func NewAuthHandler(auth Authenticator, identity Identity, timeout time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, identity: identity, timeout: timeout}
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleDomainError(w, err, "Invalid credentials")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.auth.Register(ctx, req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		handleDomainError(w, err, "Registration failed")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.identity.Current()
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "not logged in")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
