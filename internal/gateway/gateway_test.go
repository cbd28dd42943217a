package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type recordedRequest struct {
	method    string
	path      string
	auth      string
	requestID string
	body      map[string]any
}

type fakeAPI struct {
	m        sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

func (f *fakeAPI) record(r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.m.Lock()
	defer f.m.Unlock()
	f.requests = append(f.requests, recordedRequest{
		method:    r.Method,
		path:      r.URL.RequestURI(),
		auth:      r.Header.Get("Authorization"),
		requestID: r.Header.Get("X-Request-ID"),
		body:      body,
	})
}

func (f *fakeAPI) calls() []recordedRequest {
	f.m.Lock()
	defer f.m.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const cartJSON = `{"id":1,"items":[{"id":11,"foodId":7,"foodName":"Masala Dosa","category":"South Indian",
"quantity":3,"priceAtTime":120.00,"subtotal":360.00}],"totalItems":3,"totalPrice":360.00}`

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			next.ServeHTTP(w, r)
		})
	})
	cart := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(cartJSON))
	}
	r.Get("/api/cart", cart)
	r.Post("/api/cart/add", cart)
	r.Put("/api/cart/update/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "404" {
			writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "CartItem not found with id: 404"})
			return
		}
		cart(w, r)
	})
	r.Delete("/api/cart/remove/{id}", cart)
	r.Delete("/api/cart/clear", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "jwt-1", "userId": 5, "name": "Asha", "email": "asha@example.com",
			"role": "CUSTOMER", "message": "Login successfully",
		})
	})
	r.Get("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer jwt-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"userId": 5, "name": "Asha", "role": "CUSTOMER"})
	})
	r.Get("/api/foods", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 7, "name": "Masala Dosa", "price": 120, "category": "South Indian", "isAvailable": true},
		})
	})
	r.Get("/api/foods/categories", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []string{"Biryani", "South Indian"})
	})
	r.Post("/api/orders/place", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": 99, "status": "PLACED", "totalPrice": 360, "createdAt": "2024-05-01T12:30:45.123456",
		})
	})
	r.Get("/api/orders", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 99, "status": "DELIVERED", "createdAt": "2024-04-30T20:15:00"}})
	})
	r.Put("/api/orders/{id}/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Access denied: insufficient privileges"})
	})
	r.Get("/api/boom", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "maintenance"})
	})

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func newTestClient(t *testing.T, f *fakeAPI, token string) *Client {
	logger, _ := test.NewNullLogger()
	return New(Config{BaseURL: f.server.URL + "/api/", Timeout: 2 * time.Second}, staticToken(token), logger)
}

func TestGetCart_Success(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "jwt-1")

	snap, err := c.GetCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snap.TotalItems)
	assert.True(t, snap.TotalPrice.Equal(decimal.NewFromInt(360)))
	require.Len(t, snap.Items, 1)
	assert.Equal(t, domain.ID("11"), snap.Items[0].ID)

	calls := f.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer jwt-1", calls[0].auth)
	assert.NotEmpty(t, calls[0].requestID)
}

func TestCartOperations_RequireToken(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "")
	ctx := context.Background()

	_, err := c.GetCart(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = c.AddItem(ctx, "7", 1)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	err = c.ClearCart(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.Empty(t, f.calls(), "no request may be sent without a session")
}

func TestAddItem_SendsBody(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "jwt-1")

	_, err := c.AddItem(context.Background(), "7", 2)
	require.NoError(t, err)

	calls := f.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].method)
	assert.Equal(t, "/api/cart/add", calls[0].path)
	assert.Equal(t, "7", calls[0].body["foodId"])
	assert.Equal(t, float64(2), calls[0].body["quantity"])
}

func TestUpdateAndRemove_Paths(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "jwt-1")
	ctx := context.Background()

	_, err := c.UpdateItem(ctx, "11", 3)
	require.NoError(t, err)
	_, err = c.RemoveItem(ctx, "11")
	require.NoError(t, err)
	require.NoError(t, c.ClearCart(ctx))

	calls := f.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "/api/cart/update/11", calls[0].path)
	assert.Equal(t, float64(3), calls[0].body["quantity"])
	assert.Equal(t, "/api/cart/remove/11", calls[1].path)
	assert.Equal(t, "/api/cart/clear", calls[2].path)
}

func TestUpdateItem_ServerRejected(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "jwt-1")

	_, err := c.UpdateItem(context.Background(), "404", 2)
	require.ErrorIs(t, err, domain.ErrServerRejected)

	var se *domain.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "CartItem not found with id: 404", se.Message)
}

func TestMe_ExpiredTokenIsUnauthenticated(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "stale")

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, "Token expired", domain.UserMessage(err, ""))
}

func TestLogin_DecodesAuthResponse(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "")

	res, err := c.Login(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", res.Token)
	assert.Equal(t, domain.ID("5"), res.User.ID)
	assert.Equal(t, "Asha", res.User.Name)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	assert.Empty(t, f.calls()[0].auth)
}

func TestFoods(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "")
	ctx := context.Background()

	foods, err := c.ListFoods(ctx, "South Indian", "dosa")
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.True(t, foods[0].Available)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Biryani", "South Indian"}, cats)

	assert.Equal(t, "/api/foods?category=South+Indian&search=dosa", f.calls()[0].path)
}

func TestOrders(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "jwt-1")
	ctx := context.Background()

	order, err := c.PlaceOrder(ctx, domain.PlaceOrderRequest{DeliveryAddress: "12 MG Road", PaymentMethod: "UPI"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 45, 123456000, time.UTC), order.CreatedAt.Time)

	orders, err := c.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 20, orders[0].CreatedAt.Hour())

	_, err = c.UpdateOrderStatus(ctx, "99", domain.OrderStatusDelivered)
	require.ErrorIs(t, err, domain.ErrServerRejected)
	assert.Equal(t, "Access denied: insufficient privileges", domain.UserMessage(err, ""))
}

func TestNetworkFailure(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, staticToken("t"), logger)

	_, err := c.GetCart(context.Background())
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.NotErrorIs(t, err, domain.ErrServerRejected)
}

func TestRequestID_Propagated(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "jwt-1")

	ctx := WithRequestID(context.Background(), "req-42")
	_, err := c.GetCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "req-42", f.calls()[0].requestID)
}

func TestBreaker_OpensOnServerFaults(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "maintenance"})
	}))
	defer srv.Close()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c := New(Config{BaseURL: srv.URL, FailureThreshold: 2, OpenTimeout: time.Minute}, staticToken("t"), logger)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.GetCart(ctx)
		require.ErrorIs(t, err, domain.ErrServerRejected)
		assert.Equal(t, "maintenance", domain.UserMessage(err, ""))
	}

	_, err := c.GetCart(ctx)
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not hit the server")

	var sawStateChange bool
	for _, e := range hook.AllEntries() {
		if e.Message == "circuit breaker state changed" {
			sawStateChange = true
		}
	}
	assert.True(t, sawStateChange)
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Food item is not available: Lassi"})
	}))
	defer srv.Close()

	logger, _ := test.NewNullLogger()
	c := New(Config{BaseURL: srv.URL, FailureThreshold: 1}, staticToken("t"), logger)

	for i := 0; i < 3; i++ {
		_, err := c.AddItem(context.Background(), "3", 1)
		require.ErrorIs(t, err, domain.ErrServerRejected)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestWithToken_OverridesSession(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(t, f, "")

	u, err := c.Me(WithToken(context.Background(), "jwt-1"))
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)

	calls := f.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer jwt-1", calls[0].auth)

	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Len(t, f.calls(), 1)
}

func TestPlaceOrder_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":99,"createdAt":"next tuesday"}`))
	}))
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, staticToken("jwt-1"), logger)

	_, err := c.PlaceOrder(context.Background(), domain.PlaceOrderRequest{DeliveryAddress: "12 MG Road", PaymentMethod: "UPI"})
	require.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.False(t, errors.Is(err, domain.ErrNetwork))
	assert.False(t, errors.Is(err, domain.ErrServerRejected))
}
