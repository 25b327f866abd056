package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

// keySetCacheKey is the only key stored in the cache; the whole set is one
// value so readers never observe a partially updated key set.
const keySetCacheKey = "jwks"

// KeyCache is a process-wide, TTL-bounded cache of the provider's key set.
// Concurrent misses collapse into a single fetch.
type KeyCache struct {
	fetcher            Fetcher
	cache              *ristretto.Cache[string, *KeySet]
	ttl                time.Duration
	minRefreshInterval time.Duration
	logger             *slog.Logger

	group singleflight.Group

	mu          sync.Mutex
	lastRefresh time.Time
	refreshing  *refreshCall
	now         func() time.Time
}

// refreshCall is a forced fetch that later callers wait on instead of
// reading the stale set.
type refreshCall struct {
	done chan struct{}
	ks   *KeySet
	err  error
}

func (c *refreshCall) wait(ctx context.Context) (*KeySet, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return c.ks, c.err
	}
}

// KeyCacheStatus describes the cache for readiness probes.
type KeyCacheStatus struct {
	Cached    bool
	Keys      int
	FetchedAt time.Time
}

// NewKeyCache creates an empty cache backed by fetcher.
func NewKeyCache(fetcher Fetcher, ttl, minRefreshInterval time.Duration, logger *slog.Logger) (*KeyCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *KeySet]{
		NumCounters:        100,
		MaxCost:            1 << 10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create key cache: %w", err)
	}

	return &KeyCache{
		fetcher:            fetcher,
		cache:              c,
		ttl:                ttl,
		minRefreshInterval: minRefreshInterval,
		logger:             logger,
		now:                time.Now,
	}, nil
}

// Get returns the cached key set, fetching it when absent or expired.
func (kc *KeyCache) Get(ctx context.Context) (*KeySet, error) {
	if ks, ok := kc.cache.Get(keySetCacheKey); ok {
		return ks, nil
	}
	return kc.load(ctx)
}

// Refresh forces a fetch unless one happened within the minimum refresh
// interval. Callers arriving while a forced fetch is in flight share its
// result; otherwise a suppressed refresh returns the current key set.
func (kc *KeyCache) Refresh(ctx context.Context) (*KeySet, error) {
	kc.mu.Lock()
	if call := kc.refreshing; call != nil {
		kc.mu.Unlock()
		return call.wait(ctx)
	}
	now := kc.now()
	if !kc.lastRefresh.IsZero() && now.Sub(kc.lastRefresh) < kc.minRefreshInterval {
		last := kc.lastRefresh
		kc.mu.Unlock()
		kc.logger.Debug("Key set refresh suppressed", "last_refresh", last)
		return kc.Get(ctx)
	}
	call := &refreshCall{done: make(chan struct{})}
	kc.refreshing = call
	kc.lastRefresh = now
	kc.mu.Unlock()

	go func() {
		ks, err := kc.load(context.WithoutCancel(ctx))

		// The new set is already cached, so callers that find no call in
		// flight from here on read it through Get.
		kc.mu.Lock()
		call.ks, call.err = ks, err
		kc.refreshing = nil
		kc.mu.Unlock()
		close(call.done)
	}()

	return call.wait(ctx)
}

// Status reports whether a key set is currently cached.
func (kc *KeyCache) Status() KeyCacheStatus {
	ks, ok := kc.cache.Get(keySetCacheKey)
	if !ok {
		return KeyCacheStatus{}
	}
	return KeyCacheStatus{Cached: true, Keys: ks.Len(), FetchedAt: ks.FetchedAt}
}

// Close releases the cache's background goroutines.
func (kc *KeyCache) Close() {
	kc.cache.Close()
}

// load fetches through singleflight. The shared fetch is detached from any
// single caller's cancellation; each caller still stops waiting when its own
// context ends.
func (kc *KeyCache) load(ctx context.Context) (*KeySet, error) {
	ch := kc.group.DoChan(keySetCacheKey, func() (any, error) {
		ks, err := kc.fetcher.Fetch(context.WithoutCancel(ctx))
		if err != nil {
			kc.logger.Warn("Failed to fetch signing keys", "error", err)
			return nil, err
		}

		kc.cache.SetWithTTL(keySetCacheKey, ks, 1, kc.ttl)
		kc.cache.Wait()

		kc.logger.Info("Signing keys fetched", "keys", ks.Len())
		return ks, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*KeySet), nil
	}
}
