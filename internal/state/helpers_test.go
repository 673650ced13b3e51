package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"jobdeck/internal/storage"
	"jobdeck/internal/storage/interfaces"
	"jobdeck/internal/structures"
	"jobdeck/internal/testutil"

	"github.com/stretchr/testify/require"
)

var errWriteFailed = errors.New("write failed")

func testConf() *structures.Config {
	return &structures.Config{
		State: structures.StateConfig{
			RecentLimit:  20,
			HistoryLimit: 50,
			Milestones:   []int{1, 10, 50},
		},
	}
}

// flakyKV wraps a real handle and fails reads or writes on demand.
type flakyKV struct {
	interfaces.KVStoreInterface
	mu         sync.Mutex
	failWrites bool
	failReads  bool
}

func (f *flakyKV) setFailWrites(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = v
}

func (f *flakyKV) writesFail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failWrites
}

func (f *flakyKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return "", false, errors.New("read failed")
	}
	return f.KVStoreInterface.Get(key)
}

func (f *flakyKV) Set(key, value string) error {
	if f.writesFail() {
		return errWriteFailed
	}
	return f.KVStoreInterface.Set(key, value)
}

func (f *flakyKV) SetMany(values map[string]string) error {
	if f.writesFail() {
		return errWriteFailed
	}
	return f.KVStoreInterface.SetMany(values)
}

func (f *flakyKV) Delete(keys ...string) error {
	if f.writesFail() {
		return errWriteFailed
	}
	return f.KVStoreInterface.Delete(keys...)
}

type fixture struct {
	backend *storage.MemoryBackend
	kv      *flakyKV
	manager *Manager
	logger  *testutil.MockLogger
	metrics *testutil.MockMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, storage.NewMemoryBackend(), testConf())
}

func newFixtureOn(t *testing.T, backend *storage.MemoryBackend, conf *structures.Config) *fixture {
	t.Helper()
	handle, err := backend.Open("default")
	require.NoError(t, err)
	f := &fixture{
		backend: backend,
		kv:      &flakyKV{KVStoreInterface: handle},
		logger:  &testutil.MockLogger{},
		metrics: &testutil.MockMetrics{},
	}
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.manager, err = NewManager(f.kv, conf, f.logger, f.metrics, WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.manager.Close() })
	return f
}

// raw reads a persisted value straight from the backend.
func (f *fixture) raw(t *testing.T, key string) string {
	t.Helper()
	v, _, err := f.kv.KVStoreInterface.Get(key)
	require.NoError(t, err)
	return v
}

func testConfZero() *structures.Config {
	return &structures.Config{}
}
