package gateway

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type addItemRequest struct {
	FoodID   domain.ID `json:"foodId"`
	Quantity int       `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) GetCart(ctx context.Context) (*domain.CartSnapshot, error) {
	var snap domain.CartSnapshot
	err := c.do(ctx, call{op: "GetCart", method: http.MethodGet, path: "/cart", auth: true}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) AddItem(ctx context.Context, foodID domain.ID, quantity int) (*domain.CartSnapshot, error) {
	var snap domain.CartSnapshot
	err := c.do(ctx, call{
		op:     "AddItem",
		method: http.MethodPost,
		path:   "/cart/add",
		body:   addItemRequest{FoodID: foodID, Quantity: quantity},
		auth:   true,
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) UpdateItem(ctx context.Context, lineID domain.ID, quantity int) (*domain.CartSnapshot, error) {
	var snap domain.CartSnapshot
	err := c.do(ctx, call{
		op:     "UpdateItem",
		method: http.MethodPut,
		path:   "/cart/update/" + pathID(lineID),
		body:   updateItemRequest{Quantity: quantity},
		auth:   true,
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) RemoveItem(ctx context.Context, lineID domain.ID) (*domain.CartSnapshot, error) {
	var snap domain.CartSnapshot
	err := c.do(ctx, call{
		op:     "RemoveItem",
		method: http.MethodDelete,
		path:   "/cart/remove/" + pathID(lineID),
		auth:   true,
	}, &snap)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ClearCart only confirms; the server sends no body.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, call{op: "ClearCart", method: http.MethodDelete, path: "/cart/clear", auth: true}, nil)
}
