package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type cacheCounters struct {
	hits   int
	misses int
}

func (m *cacheCounters) IncRequestsTotal(_ string, _ int)                 {}
func (m *cacheCounters) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *cacheCounters) IncCacheHits()                                    { m.hits++ }
func (m *cacheCounters) IncCacheMisses()                                  { m.misses++ }
func (m *cacheCounters) ObservePersistenceDuration(_ time.Duration)       {}
func (m *cacheCounters) IncStoreMutations(_, _ string)                    {}
func (m *cacheCounters) IncUpstreamErrors(_ string)                       {}

func TestInstrumentedCache_CountsBrowseLookups(t *testing.T) {
	metrics := &cacheCounters{}
	c := NewInstrumentedCacheProvider(searchCacheConfig(true, 1, time.Minute, 0), &recordingLogger{}, metrics)
	assert.IsType(t, &countingCache{}, c)

	_, ok := c.Get("search:golang|berlin")
	assert.False(t, ok)

	c.Set("search:golang|berlin", []byte(`{"jobs":[]}`))
	val, ok := c.Get("search:golang|berlin")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"jobs":[]}`), val)
	c.Get("search:golang|berlin")

	c.Del("search:golang|berlin")
	c.Get("search:golang|berlin")

	assert.Equal(t, 2, metrics.hits)
	assert.Equal(t, 2, metrics.misses)
}

func TestInstrumentedCache_DisabledCountsNothing(t *testing.T) {
	metrics := &cacheCounters{}
	c := NewInstrumentedCacheProvider(searchCacheConfig(false, 1, time.Minute, 0), &recordingLogger{}, metrics)
	assert.IsType(t, &noopCache{}, c)

	c.Get("search:golang|berlin")
	assert.Zero(t, metrics.hits+metrics.misses)
}
