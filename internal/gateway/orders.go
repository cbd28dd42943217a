package gateway

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (c *Client) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, call{op: "PlaceOrder", method: http.MethodPost, path: "/orders/place", body: req, auth: true}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := c.do(ctx, call{op: "ListOrders", method: http.MethodGet, path: "/orders", auth: true}, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id domain.ID) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, call{op: "GetOrder", method: http.MethodGet, path: "/orders/" + pathID(id), auth: true}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id domain.ID, status domain.OrderStatus) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, call{
		op:     "UpdateOrderStatus",
		method: http.MethodPut,
		path:   "/orders/" + pathID(id) + "/status",
		body:   updateStatusRequest{Status: status},
		auth:   true,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
