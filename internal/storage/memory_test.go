package storage

import (
	"sync"
	"testing"
	"time"

	"jobdeck/internal/storage/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	mu      sync.Mutex
	changes []interfaces.ExternalChange
}

func (r *changeRecorder) record(c interfaces.ExternalChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *changeRecorder) all() []interfaces.ExternalChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interfaces.ExternalChange(nil), r.changes...)
}

func (r *changeRecorder) waitFor(t *testing.T, n int) []interfaces.ExternalChange {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.all()) >= n }, time.Second, 5*time.Millisecond)
	return r.all()
}

func TestMemoryBackend_SetGet(t *testing.T) {
	b := NewMemoryBackend()
	kv, err := b.Open("default")
	require.NoError(t, err)

	_, ok, err := kv.Get("savedJobs")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("savedJobs", `["a"]`))
	v, ok, err := kv.Get("savedJobs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["a"]`, v)

	require.NoError(t, kv.Delete("savedJobs"))
	_, ok, _ = kv.Get("savedJobs")
	assert.False(t, ok)
}

func TestMemoryBackend_ProfilesAreIsolated(t *testing.T) {
	b := NewMemoryBackend()
	a, _ := b.Open("alice")
	c, _ := b.Open("carol")

	require.NoError(t, a.Set("token", "t1"))
	_, ok, _ := c.Get("token")
	assert.False(t, ok)

	profiles, err := b.Profiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, profiles)
}

func TestMemoryBackend_InvalidProfile(t *testing.T) {
	b := NewMemoryBackend()
	for _, name := range []string{"", "../etc", "a/b", ".hidden"} {
		_, err := b.Open(name)
		assert.ErrorIs(t, err, ErrInvalidProfile, name)
	}
}

func TestMemoryBackend_NotifiesOtherHandlesOnly(t *testing.T) {
	b := NewMemoryBackend()
	tabA, _ := b.Open("default")
	tabB, _ := b.Open("default")

	var gotA, gotB changeRecorder
	tabA.Subscribe(gotA.record)
	tabB.Subscribe(gotB.record)

	require.NoError(t, tabA.SetMany(map[string]string{"savedJobs": `["x"]`, "savedJobsObjects": `{"x":{"id":"x"}}`}))

	changes := gotB.waitFor(t, 1)
	assert.Equal(t, "default", changes[0].Profile)
	assert.Equal(t, []string{"savedJobs", "savedJobsObjects"}, changes[0].Keys)

	v, ok, _ := tabB.Get("savedJobs")
	assert.True(t, ok)
	assert.Equal(t, `["x"]`, v)

	// A's queue is ordered, so its own write would show up before B's
	require.NoError(t, tabB.Set("token", "t"))
	changes = gotA.waitFor(t, 1)
	assert.Len(t, changes, 1)
	assert.Equal(t, []string{"token"}, changes[0].Keys)
}

func TestMemoryBackend_UnchangedWriteDoesNotNotify(t *testing.T) {
	b := NewMemoryBackend()
	tabA, _ := b.Open("default")
	tabB, _ := b.Open("default")
	var got changeRecorder
	tabB.Subscribe(got.record)

	require.NoError(t, tabA.Set("compareJobs", "[]"))
	require.NoError(t, tabA.Set("compareJobs", "[]"))
	require.NoError(t, tabA.Delete("missing"))
	require.NoError(t, tabA.Set("token", "t"))

	changes := got.waitFor(t, 2)
	require.Len(t, changes, 2)
	assert.Equal(t, []string{"compareJobs"}, changes[0].Keys)
	assert.Equal(t, []string{"token"}, changes[1].Keys)
}

func TestMemoryBackend_Unsubscribe(t *testing.T) {
	b := NewMemoryBackend()
	tabA, _ := b.Open("default")
	tabB, _ := b.Open("default")
	var got changeRecorder
	unsub := tabB.Subscribe(got.record)
	unsub()
	unsub()

	require.NoError(t, tabA.Set("token", "t"))
	assert.Empty(t, got.all())
}

func TestMemoryBackend_ClosedHandle(t *testing.T) {
	b := NewMemoryBackend()
	tabA, _ := b.Open("default")
	tabB, _ := b.Open("default")
	var got changeRecorder
	tabB.Subscribe(got.record)

	require.NoError(t, tabB.Close())
	require.NoError(t, tabB.Close())

	_, _, err := tabB.Get("token")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, tabB.Set("token", "t"), ErrClosed)

	require.NoError(t, tabA.Set("token", "t"))
	assert.Empty(t, got.all())
}

func TestChangedKeys(t *testing.T) {
	prev := map[string]string{"a": "1", "b": "2", "c": "3"}
	next := map[string]string{"a": "1", "b": "20", "d": "4"}
	assert.Equal(t, []string{"b", "c", "d"}, changedKeys(prev, next))
	assert.Empty(t, changedKeys(prev, prev))
}
