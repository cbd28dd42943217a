package menu

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type FoodSource interface {
	ListFoods(ctx context.Context, category, search string) ([]domain.Food, error)
	GetFood(ctx context.Context, id domain.ID) (*domain.Food, error)
	Categories(ctx context.Context) ([]string, error)
}

// Catalog serves menu listings through a read-through cache.
type Catalog struct {
	source FoodSource
	cache  cache.MenuCache
	log    logrus.FieldLogger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewCatalog(source FoodSource, c cache.MenuCache, log logrus.FieldLogger) *Catalog {
	return &Catalog{
		source: source,
		cache:  c,
		log:    log,
	}
}

func (c *Catalog) Foods(ctx context.Context, category, search string) ([]domain.Food, error) {
	key := "foods\x00" + category + "\x00" + search
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		foods, err := c.cache.GetFoods(ctx, category, search)
		if err == nil {
			return foods, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.WithError(err).Warn("menu cache get failed")
		}

		foods, err = c.source.ListFoods(ctx, category, search)
		if err != nil {
			return nil, err
		}
		if foods == nil {
			foods = []domain.Food{}
		}

		go func() {
			if errSet := c.cache.SetFoods(context.Background(), category, search, foods); errSet != nil {
				c.log.WithError(errSet).Warn("menu cache set failed")
			}
		}()
		return foods, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Food), nil
}

func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	v, err, _ := c.sfg.Do("categories", func() (interface{}, error) {
		categories, err := c.cache.GetCategories(ctx)
		if err == nil {
			return categories, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.WithError(err).Warn("menu cache get failed")
		}

		categories, err = c.source.Categories(ctx)
		if err != nil {
			return nil, err
		}

		go func() {
			if errSet := c.cache.SetCategories(context.Background(), categories); errSet != nil {
				c.log.WithError(errSet).Warn("menu cache set failed")
			}
		}()
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Food is not cached: the detail view must show live availability.
func (c *Catalog) Food(ctx context.Context, id domain.ID) (*domain.Food, error) {
	return c.source.GetFood(ctx, id)
}

// Invalidate forgets cached listings, e.g. after an admin edits the menu.
func (c *Catalog) Invalidate(ctx context.Context) error {
	return c.cache.Invalidate(ctx)
}
