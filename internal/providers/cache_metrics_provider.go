package providers

import "jobdeck/internal/structures"

// countingCache reports every search cache lookup as a hit or a miss.
type countingCache struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *countingCache) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
		return val, true
	}
	c.metrics.IncCacheMisses()
	return nil, false
}

func (c *countingCache) Set(key string, value []byte) { c.inner.Set(key, value) }
func (c *countingCache) Del(key string)               { c.inner.Del(key) }

// NewInstrumentedCacheProvider builds the search cache with hit/miss counters. A disabled
// cache is returned bare: every lookup would be a miss and the ratio would mean nothing.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if _, disabled := inner.(*noopCache); disabled {
		return inner
	}
	return &countingCache{inner: inner, metrics: metrics}
}
