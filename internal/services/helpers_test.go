package services

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"jobdeck/internal/remote"
	"jobdeck/internal/storage"
	"jobdeck/internal/structures"
	"jobdeck/internal/testutil"

	json "github.com/goccy/go-json"
)

func testConfig() *structures.Config {
	return &structures.Config{
		State: structures.StateConfig{
			RecentLimit:  20,
			HistoryLimit: 50,
			Milestones:   []int{1, 10, 50},
			MaxProfiles:  2,
		},
		Upstream: structures.UpstreamConfig{
			Timeout:          2 * time.Second,
			StaleTime:        time.Minute,
			LocationDebounce: 30 * time.Millisecond,
		},
	}
}

// fakeClock advances by step on every call.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type profileFixture struct {
	ps      *ProfileService
	backend *storage.MemoryBackend
	logger  *testutil.MockLogger
	clock   *fakeClock
}

func newProfileFixture(t *testing.T, conf *structures.Config) *profileFixture {
	t.Helper()
	f := &profileFixture{
		backend: storage.NewMemoryBackend(),
		logger:  &testutil.MockLogger{},
		clock:   newFakeClock(time.Millisecond),
	}
	client := remote.NewClient(conf, remote.NewLogNotifier(f.logger), f.logger, &testutil.MockMetrics{})
	f.ps = NewProfileService(conf, f.backend, client, f.logger, &testutil.MockMetrics{})
	f.ps.now = f.clock.Now
	t.Cleanup(func() { _ = f.ps.Close() })
	return f
}

// upstream is a fake collaborator answering with the standard envelope.
func upstream(t *testing.T, handler func(w http.ResponseWriter, r *http.Request) (int, map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, body := handler(w, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
