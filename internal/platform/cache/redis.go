package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"homeboard/contexts/marketplace/moderation-service/domain/entities"

	"github.com/go-redis/redis/v8"
)

// ListingTTL bounds how long a published listing stays cached.
const ListingTTL = 10 * time.Minute

// RedisListingCache fronts the listing read path. Cache failures are
// logged and treated as misses; the repository stays the source of
// truth.
type RedisListingCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisListingCache(addr, password string, logger *slog.Logger) (*RedisListingCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisListingCache{
		client: client,
		logger: logger,
	}, nil
}

func (c *RedisListingCache) GetListing(ctx context.Context, listingID string) (entities.Listing, bool) {
	raw, err := c.client.Get(ctx, listingKey(listingID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("listing cache read failed",
				"event", "listing_cache_read_failed",
				"module", "internal/platform/cache",
				"layer", "platform",
				"listing_id", listingID,
				"error", err.Error(),
			)
		}
		return entities.Listing{}, false
	}

	var listing entities.Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return entities.Listing{}, false
	}
	return listing, true
}

func (c *RedisListingCache) SetListing(ctx context.Context, listing entities.Listing) {
	raw, err := json.Marshal(listing)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listingKey(listing.ListingID), raw, ListingTTL).Err(); err != nil {
		c.logger.Warn("listing cache write failed",
			"event", "listing_cache_write_failed",
			"module", "internal/platform/cache",
			"layer", "platform",
			"listing_id", listing.ListingID,
			"error", err.Error(),
		)
	}
}

func (c *RedisListingCache) Close() error {
	return c.client.Close()
}

func listingKey(listingID string) string {
	return "listing:" + listingID
}
