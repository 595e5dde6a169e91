// Package news looks up recent news about a symbol, through a cache.
//
// Fetching news is slow and costly (an AI model grounded on web search), so
// lookups are cached per symbol, for the session by default.
package news

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Item is one news headline about a symbol.
type Item struct {
	Title     string    `json:"title"`
	Source    string    `json:"source,omitempty"`
	URL       string    `json:"url,omitempty"`
	Published time.Time `json:"published,omitzero"`
	Summary   string    `json:"summary,omitempty"`
}

// Fetcher retrieves fresh news for a symbol.
type Fetcher interface {
	News(ctx context.Context, symbol string) ([]Item, error)
}

// Cache stores news per symbol.
type Cache interface {
	// Get returns the cached items, and false on a miss.
	Get(ctx context.Context, symbol string) ([]Item, bool, error)
	Set(ctx context.Context, symbol string, items []Item) error
}

// MemoryCache is a Cache kept in memory for the lifetime of the process.
// It is safe for concurrent use.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string][]Item
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]Item)}
}

func (c *MemoryCache) Get(ctx context.Context, symbol string) ([]Item, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.items[symbol]
	return items, ok, nil
}

func (c *MemoryCache) Set(ctx context.Context, symbol string, items []Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[symbol] = items
	return nil
}

// FetchTimeout bounds a fetch, which outlives the lookup that started it.
const FetchTimeout = 2 * time.Minute

// Service answers news lookups from the cache, or from the fetcher on a miss.
type Service struct {
	cache   Cache
	fetcher Fetcher
	group   singleflight.Group
}

// NewService returns a Service. Concurrent lookups of the same symbol share a
// single fetch.
func NewService(cache Cache, fetcher Fetcher) *Service {
	return &Service{cache: cache, fetcher: fetcher}
}

// Lookup returns the news about symbol.
//
// A cache failure is logged and treated as a miss: the cache never prevents an
// answer. A lookup cancelled while fetching returns early, the fetch goes on
// for the other lookups waiting on it, and for the cache.
func (s *Service) Lookup(ctx context.Context, symbol string) ([]Item, error) {
	items, ok, err := s.cache.Get(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("news cache read failed")
	}
	if ok {
		return items, nil
	}

	ch := s.group.DoChan(symbol, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FetchTimeout)
		defer cancel()
		// a fetch may have completed since the first read
		if items, ok, _ := s.cache.Get(ctx, symbol); ok {
			return items, nil
		}
		items, err := s.fetcher.News(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("cannot fetch news for %q: %w", symbol, err)
		}
		if items == nil {
			items = []Item{}
		}
		if err := s.cache.Set(ctx, symbol, items); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("news cache write failed")
		}
		return items, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Item), nil
	}
}
