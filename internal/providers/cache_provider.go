package providers

import (
	"time"

	"github.com/coocood/freecache"
	"jobdeck/internal/structures"
)

// CacheProviderInterface holds encoded search results keyed by normalized query and
// location. Entries expire on their own; the search service decides when one is stale.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

// SearchCache keeps search results in a fixed-size freecache arena. When the arena is
// full the oldest results are overwritten first.
type SearchCache struct {
	cache     *freecache.Cache
	expireSec int
	logger    Logger
}

// searchCacheTTL is how long a result set stays in the cache. It never drops below the
// upstream stale time, so an expired-but-stale result is still there to serve while it
// is refetched.
func searchCacheTTL(conf *structures.Config) time.Duration {
	ttl := conf.Cache.TTL
	if ttl < conf.Upstream.StaleTime {
		ttl = conf.Upstream.StaleTime
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Search cache disabled, every browse hits the upstream")
		return &noopCache{}
	}

	ttl := searchCacheTTL(conf)
	if ttl != conf.Cache.TTL {
		logger.Warnf(TypeApp, "Search cache ttl %s raised to %s to cover the stale window", conf.Cache.TTL, ttl)
	}
	logger.Infof(TypeApp, "Search cache: %dMB, results kept %s", conf.Cache.Size, ttl)

	return &SearchCache{
		cache:     freecache.NewCache(conf.Cache.Size * 1024 * 1024),
		expireSec: int(ttl / time.Second),
		logger:    logger,
	}
}

func (c *SearchCache) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores the result set. One larger than 1/1024 of the arena is not cached and the
// next browse for the key goes upstream again.
func (c *SearchCache) Set(key string, value []byte) {
	if err := c.cache.Set([]byte(key), value, c.expireSec); err != nil {
		c.logger.Debugf(TypeApp, "Results for %s not cached (%d bytes): %s", key, len(value), err)
	}
}

func (c *SearchCache) Del(key string) {
	c.cache.Del([]byte(key))
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
func (n *noopCache) Del(_ string)                {}
