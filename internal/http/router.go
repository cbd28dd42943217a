package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Cart          *CartHandler
	Menu          *MenuHandler
	Auth          *AuthHandler
	Orders        *OrdersHandler
	Notifications *NotificationsHandler
	Identity      Identity
}

func NewRouter(h Handlers, requestTimeout time.Duration, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(AccessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/register", h.Auth.Register)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", h.Menu.ListFoods)
			r.Get("/categories", h.Menu.Categories)
			r.Post("/refresh", h.Menu.Refresh)
			r.Get("/{food_id}", h.Menu.GetFood)
		})

		r.Route("/cart", func(r chi.Router) {
			// Anonymous adds reach the handler so the login hint is posted.
			r.Post("/items", h.Cart.AddItem)
			r.Group(func(r chi.Router) {
				r.Use(RequireSession(h.Identity))
				r.Get("/", h.Cart.GetCart)
				r.Put("/items/{line_id}", h.Cart.UpdateQuantity)
				r.Delete("/items/{line_id}", h.Cart.RemoveItem)
				r.Delete("/", h.Cart.ClearCart)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(RequireSession(h.Identity))
			r.Get("/", h.Orders.ListOrders)
			r.Post("/", h.Orders.PlaceOrder)
			r.Get("/{order_id}", h.Orders.GetOrder)
			r.Put("/{order_id}/status", h.Orders.UpdateStatus)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notifications.List)
			r.Delete("/{id}", h.Notifications.Dismiss)
		})
	})

	return r
}
