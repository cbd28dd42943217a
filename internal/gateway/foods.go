package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (c *Client) ListFoods(ctx context.Context, category, search string) ([]domain.Food, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}

	var foods []domain.Food
	err := c.do(ctx, call{op: "ListFoods", method: http.MethodGet, path: "/foods", query: q}, &foods)
	if err != nil {
		return nil, err
	}
	return foods, nil
}

func (c *Client) GetFood(ctx context.Context, id domain.ID) (*domain.Food, error) {
	var food domain.Food
	err := c.do(ctx, call{op: "GetFood", method: http.MethodGet, path: "/foods/" + pathID(id)}, &food)
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := c.do(ctx, call{op: "Categories", method: http.MethodGet, path: "/foods/categories"}, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
