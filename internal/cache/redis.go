package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "menu:"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) GetFoods(ctx context.Context, category, search string) ([]domain.Food, error) {
	var foods []domain.Food
	if err := r.get(ctx, foodsKey(category, search), &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

func (r RedisCache) SetFoods(ctx context.Context, category, search string, foods []domain.Food) error {
	return r.set(ctx, foodsKey(category, search), foods)
}

func (r RedisCache) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.get(ctx, categoriesKey(), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r RedisCache) SetCategories(ctx context.Context, categories []string) error {
	return r.set(ctx, categoriesKey(), categories)
}

// Invalidate drops every cached menu entry.
func (r RedisCache) Invalidate(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal menu failed: %w", err)
	}
	return nil
}

func (r RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func foodsKey(category, search string) string {
	return fmt.Sprintf("%sfoods:%s:%s", keyPrefix, url.QueryEscape(category), url.QueryEscape(search))
}

func categoriesKey() string {
	return keyPrefix + "categories"
}
