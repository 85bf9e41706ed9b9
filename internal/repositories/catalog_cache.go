package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/go-redis/redis/v8"
)

// CatalogCache caches merchant catalogs. Catalog listings are immutable, so
// entries only expire by TTL.
type CatalogCache interface {
	Get(ctx context.Context, merchantID uint) ([]models.MerchantOffer, bool, error)
	Set(ctx context.Context, merchantID uint, offers []models.MerchantOffer) error
}

type redisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	return &redisCatalogCache{client: client, ttl: ttl}
}

func catalogKey(merchantID uint) string {
	return fmt.Sprintf("catalog:merchant:%d", merchantID)
}

func (c *redisCatalogCache) Get(ctx context.Context, merchantID uint) ([]models.MerchantOffer, bool, error) {
	raw, err := c.client.Get(ctx, catalogKey(merchantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var offers []models.MerchantOffer
	if err := json.Unmarshal(raw, &offers); err != nil {
		return nil, false, err
	}
	return offers, true, nil
}

func (c *redisCatalogCache) Set(ctx context.Context, merchantID uint, offers []models.MerchantOffer) error {
	raw, err := json.Marshal(offers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey(merchantID), raw, c.ttl).Err()
}
