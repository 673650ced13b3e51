package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobdeck/internal/models"
	"jobdeck/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	mu    sync.Mutex
	calls int
	jobs  []models.JobRecord
	err   error
	gate  chan struct{}
}

func (f *fakeSearcher) SearchJobs(ctx context.Context, query, location string) ([]models.JobRecord, error) {
	f.mu.Lock()
	f.calls++
	gate, jobs, err := f.gate, f.jobs, f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return jobs, err
}

func (f *fakeSearcher) set(jobs []models.JobRecord, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs, f.err = jobs, err
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestSearchService(t *testing.T) (*SearchService, *fakeClock, *testutil.MockLogger) {
	t.Helper()
	logger := &testutil.MockLogger{}
	ss := NewSearchService(testConfig(), testutil.NewMockCache(), logger)
	clock := newFakeClock(0)
	ss.now = clock.Now
	return ss, clock, logger
}

func jobs(ids ...string) []models.JobRecord {
	out := make([]models.JobRecord, len(ids))
	for i, id := range ids {
		out[i] = models.JobRecord{ID: id}
	}
	return out
}

func TestSearchService_MissThenFreshHit(t *testing.T) {
	ss, _, _ := newTestSearchService(t)
	searcher := &fakeSearcher{jobs: jobs("a", "b")}

	res, err := ss.Search(context.Background(), searcher, "Go", "Berlin")
	require.NoError(t, err)
	assert.Len(t, res.Jobs, 2)
	assert.False(t, res.Stale)

	res, err = ss.Search(context.Background(), searcher, " go ", "berlin")
	require.NoError(t, err)
	assert.Len(t, res.Jobs, 2)
	assert.Equal(t, 1, searcher.callCount(), "normalized key served from cache")
}

func TestSearchService_StaleWhileRevalidate(t *testing.T) {
	ss, clock, _ := newTestSearchService(t)
	searcher := &fakeSearcher{jobs: jobs("old")}

	_, err := ss.Search(context.Background(), searcher, "go", "")
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	gate := make(chan struct{})
	searcher.mu.Lock()
	searcher.gate = gate
	searcher.jobs = jobs("new")
	searcher.mu.Unlock()

	for i := 0; i < 3; i++ {
		res, err := ss.Search(context.Background(), searcher, "go", "")
		require.NoError(t, err)
		assert.True(t, res.Stale)
		assert.Equal(t, "old", res.Jobs[0].ID)
	}

	require.Eventually(t, func() bool { return searcher.callCount() == 2 }, time.Second, 5*time.Millisecond)
	close(gate)
	ss.Wait()
	assert.Equal(t, 2, searcher.callCount(), "one background refetch per key")

	res, err := ss.Search(context.Background(), searcher, "go", "")
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.Equal(t, "new", res.Jobs[0].ID)
}

func TestSearchService_BackgroundFailureKeepsStale(t *testing.T) {
	ss, clock, logger := newTestSearchService(t)
	searcher := &fakeSearcher{jobs: jobs("old")}

	_, err := ss.Search(context.Background(), searcher, "go", "")
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	searcher.set(nil, errors.New("upstream down"))

	res, err := ss.Search(context.Background(), searcher, "go", "")
	require.NoError(t, err)
	assert.True(t, res.Stale)
	ss.Wait()

	assert.Equal(t, 1, logger.Count("warn", "keeping stale results"))
	res, err = ss.Search(context.Background(), searcher, "go", "")
	require.NoError(t, err)
	assert.Equal(t, "old", res.Jobs[0].ID)
}

func TestSearchService_MissErrorSurfaces(t *testing.T) {
	ss, _, _ := newTestSearchService(t)
	searcher := &fakeSearcher{err: errors.New("upstream down")}

	_, err := ss.Search(context.Background(), searcher, "go", "")
	assert.EqualError(t, err, "upstream down")
}

func TestSearchService_RefreshFallsBackToCache(t *testing.T) {
	ss, _, _ := newTestSearchService(t)
	searcher := &fakeSearcher{jobs: jobs("a")}

	_, err := ss.Search(context.Background(), searcher, "go", "")
	require.NoError(t, err)

	searcher.set(nil, errors.New("upstream down"))
	res, err := ss.Refresh(context.Background(), searcher, "go", "")
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, "upstream down", res.Warning)
	assert.Equal(t, "a", res.Jobs[0].ID)

	_, err = ss.Refresh(context.Background(), searcher, "rust", "")
	assert.Error(t, err)
}

func TestSearchService_EmptyResultIsCached(t *testing.T) {
	ss, _, _ := newTestSearchService(t)
	searcher := &fakeSearcher{}

	res, err := ss.Search(context.Background(), searcher, "nothing", "")
	require.NoError(t, err)
	assert.NotNil(t, res.Jobs)
	assert.Empty(t, res.Jobs)

	_, err = ss.Search(context.Background(), searcher, "nothing", "")
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.callCount())
}

func TestSearchService_CorruptEntryRefetched(t *testing.T) {
	logger := &testutil.MockLogger{}
	cache := testutil.NewMockCache()
	ss := NewSearchService(testConfig(), cache, logger)
	cache.Set(searchKey("go", ""), []byte("{broken"))
	searcher := &fakeSearcher{jobs: jobs("a")}

	res, err := ss.Search(context.Background(), searcher, "go", "")
	require.NoError(t, err)
	assert.Len(t, res.Jobs, 1)
	assert.Equal(t, 1, logger.Count("warn", "unreadable cache entry"))
}
