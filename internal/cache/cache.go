package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MenuCache keeps menu listings close to the client. Menus change rarely and are
// identical for every user, unlike carts which are never cached.
type MenuCache interface {
	GetFoods(ctx context.Context, category, search string) ([]domain.Food, error)
	SetFoods(ctx context.Context, category, search string, foods []domain.Food) error
	GetCategories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, categories []string) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
