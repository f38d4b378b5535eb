package commands

import (
	"sync"
	"time"
)

type CacheItem struct {
	Price      float64
	Expiration time.Time
}

// quoteCache keeps lookup results for a short time so repeated /forex and
// /crypto commands do not burn the provider rate limit
type quoteCache struct {
	mu    sync.Mutex
	items map[string]*CacheItem
	now   func() time.Time
}

func newQuoteCache() *quoteCache {
	return &quoteCache{items: make(map[string]*CacheItem), now: time.Now}
}

func (c *quoteCache) get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, found := c.items[key]; found && c.now().Before(item.Expiration) {
		return item.Price, true
	}
	delete(c.items, key)
	return 0, false
}

func (c *quoteCache) set(key string, price float64, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &CacheItem{
		Price:      price,
		Expiration: c.now().Add(duration),
	}
}
