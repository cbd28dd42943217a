package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type Orders interface {
	Place(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Order, error)
	History(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id domain.ID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id domain.ID, status domain.OrderStatus) (*domain.Order, error)
}

type OrdersHandler struct {
	orders  Orders
	timeout time.Duration
}

func NewOrdersHandler(orders Orders, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{orders: orders, timeout: timeout}
}

type UpdateStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *OrdersHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.Place(ctx, req)
	if err != nil {
		handleDomainError(w, err, "Failed to place order")
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.orders.History(ctx)
	if err != nil {
		handleDomainError(w, err, "Failed to load orders")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.Get(ctx, domain.ID(chi.URLParam(r, "order_id")))
	if err != nil {
		handleDomainError(w, err, "Failed to load order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.UpdateStatus(ctx, domain.ID(chi.URLParam(r, "order_id")), req.Status)
	if err != nil {
		handleDomainError(w, err, "Failed to update order status")
		return
	}
	respondJSON(w, http.StatusOK, order)
}
