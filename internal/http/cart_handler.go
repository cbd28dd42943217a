package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/interaction"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartView interface {
	Snapshot() *domain.CartSnapshot
	Loading() bool
	Count() int
	Total() decimal.Decimal
	Refresh(ctx context.Context)
}

type LineActions interface {
	ChangeQuantity(ctx context.Context, line domain.CartLine, quantity int) (interaction.Outcome, error)
	Remove(ctx context.Context, line domain.CartLine) (interaction.Outcome, error)
	Clear(ctx context.Context) (interaction.Outcome, error)
}

type AddActions interface {
	AddToCart(ctx context.Context, food domain.Food, quantity int) (interaction.Outcome, error)
}

type CartHandler struct {
	view    CartView
	lines   LineActions
	adds    AddActions
	timeout time.Duration
}

func NewCartHandler(view CartView, lines LineActions, adds AddActions, timeout time.Duration) *CartHandler {
	return &CartHandler{
		view:    view,
		lines:   lines,
		adds:    adds,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	FoodID   domain.ID `json:"foodId"`
	FoodName string    `json:"foodName"`
	Quantity int       `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Cart         *domain.CartSnapshot `json:"cart"`
	Count        int                  `json:"count"`
	Total        decimal.Decimal      `json:"total"`
	TotalDisplay string               `json:"totalDisplay"`
	Loading      bool                 `json:"loading"`
	Outcome      string               `json:"outcome,omitempty"`
}

func (h *CartHandler) cartResponse(outcome string) CartResponseDTO {
	total := h.view.Total()
	return CartResponseDTO{
		Cart:         h.view.Snapshot(),
		Count:        h.view.Count(),
		Total:        total,
		TotalDisplay: domain.FormatINR(total),
		Loading:      h.view.Loading(),
		Outcome:      outcome,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		h.view.Refresh(ctx)
	}
	respondJSON(w, http.StatusOK, h.cartResponse(""))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.FoodID == "" {
		respondError(w, http.StatusBadRequest, "invalid_food_id", "foodId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	outcome, err := h.adds.AddToCart(ctx, domain.Food{ID: req.FoodID, Name: req.FoodName}, req.Quantity)
	h.respondOutcome(w, outcome, err, "Failed to add to cart")
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	line, ok := h.lineFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	outcome, err := h.lines.ChangeQuantity(ctx, line, req.Quantity)
	if err == nil && outcome == interaction.Rejected {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}
	h.respondOutcome(w, outcome, err, "Failed to update quantity")
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	line, ok := h.lineFromPath(w, r)
	if !ok {
		return
	}

	outcome, err := h.lines.Remove(ctx, line)
	h.respondOutcome(w, outcome, err, "Failed to remove item")
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	outcome, err := h.lines.Clear(ctx)
	h.respondOutcome(w, outcome, err, "Failed to clear cart")
}

func (h *CartHandler) lineFromPath(w http.ResponseWriter, r *http.Request) (domain.CartLine, bool) {
	lineID := domain.ID(chi.URLParam(r, "line_id"))
	line, ok := h.view.Snapshot().Line(lineID)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "cart item not found")
		return domain.CartLine{}, false
	}
	return line, true
}

// respondOutcome reports the cart after a trigger. A suppressed duplicate is a 409.
func (h *CartHandler) respondOutcome(w http.ResponseWriter, outcome interaction.Outcome, err error, fallback string) {
	if err != nil {
		handleDomainError(w, err, fallback)
		return
	}
	if outcome == interaction.Ignored {
		respondJSON(w, http.StatusConflict, h.cartResponse(outcome.String()))
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(outcome.String()))
}
