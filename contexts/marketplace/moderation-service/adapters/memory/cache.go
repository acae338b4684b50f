package memory

import (
	"context"
	"sync"

	"homeboard/contexts/marketplace/moderation-service/domain/entities"
)

// ListingCache is a map-backed cache for tests and single-process runs;
// the redis adapter replaces it in deployed processes.
type ListingCache struct {
	mu       sync.RWMutex
	listings map[string]entities.Listing
}

func NewListingCache() *ListingCache {
	return &ListingCache{listings: make(map[string]entities.Listing)}
}

func (c *ListingCache) GetListing(_ context.Context, listingID string) (entities.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.listings[listingID]
	return item, ok
}

func (c *ListingCache) SetListing(_ context.Context, listing entities.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listings[listing.ListingID] = listing
}
