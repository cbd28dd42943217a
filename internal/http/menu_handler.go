package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type Catalog interface {
	Foods(ctx context.Context, category, search string) ([]domain.Food, error)
	Categories(ctx context.Context) ([]string, error)
	Food(ctx context.Context, id domain.ID) (*domain.Food, error)
	Invalidate(ctx context.Context) error
}

type MenuHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewMenuHandler(catalog Catalog, timeout time.Duration) *MenuHandler {
	return &MenuHandler{catalog: catalog, timeout: timeout}
}

// ListFoods serves GET /menu?category=&search=
func (h *MenuHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	foods, err := h.catalog.Foods(ctx, q.Get("category"), q.Get("search"))
	if err != nil {
		handleDomainError(w, err, "Failed to load menu")
		return
	}
	respondJSON(w, http.StatusOK, foods)
}

func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		handleDomainError(w, err, "Failed to load categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *MenuHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	food, err := h.catalog.Food(ctx, domain.ID(chi.URLParam(r, "food_id")))
	if err != nil {
		handleDomainError(w, err, "Failed to load item")
		return
	}
	respondJSON(w, http.StatusOK, food)
}

// Refresh drops cached listings so the next read goes to the API.
func (h *MenuHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.catalog.Invalidate(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "cache_unavailable", "Failed to refresh menu")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
