package http

import (
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/go-chi/chi/v5"
)

type Toasts interface {
	Messages() []notify.Message
	Dismiss(id notify.ID)
}

type NotificationsHandler struct {
	toasts Toasts
}

func NewNotificationsHandler(toasts Toasts) *NotificationsHandler {
	return &NotificationsHandler{toasts: toasts}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs := h.toasts.Messages()
	if msgs == nil {
		msgs = []notify.Message{}
	}
	respondJSON(w, http.StatusOK, msgs)
}

func (h *NotificationsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	h.toasts.Dismiss(notify.ID(id))
	w.WriteHeader(http.StatusNoContent)
}
