package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"jobdeck/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set JOBDECK_TEST_POSTGRES_URL to a disposable database to run these.
func newTestPostgresBackend(t *testing.T) (*PostgresBackend, *testutil.MockLogger) {
	t.Helper()
	url := os.Getenv("JOBDECK_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("JOBDECK_TEST_POSTGRES_URL is not set")
	}
	logger := &testutil.MockLogger{}
	b, err := NewPostgresBackend(url, logger, &testutil.MockMetrics{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, logger
}

func testProfile() string {
	return "test-" + uuid.NewString()[:8]
}

func TestPostgresBackend_SetManyGetDelete(t *testing.T) {
	b, _ := newTestPostgresBackend(t)
	profile := testProfile()
	kv, err := b.Open(profile)
	require.NoError(t, err)

	require.NoError(t, kv.SetMany(map[string]string{"savedJobs": `["x"]`, "savedJobsObjects": `{}`}))
	v, ok, err := kv.Get("savedJobs")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["x"]`, v)

	require.NoError(t, kv.Set("savedJobs", `["x","y"]`))
	v, _, _ = kv.Get("savedJobs")
	assert.Equal(t, `["x","y"]`, v)

	require.NoError(t, kv.Delete("savedJobs", "savedJobsObjects"))
	_, ok, err = kv.Get("savedJobsObjects")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresBackend_FailedSetManyWritesNothing(t *testing.T) {
	b, logger := newTestPostgresBackend(t)
	profile := testProfile()
	kv, _ := b.Open(profile)

	// postgres rejects NUL bytes in text, so one of the two upserts fails
	err := kv.SetMany(map[string]string{"a": "ok", "b": "bad\x00value"})
	require.Error(t, err)
	assert.Equal(t, 1, logger.Count("error", "postgres write failed"))

	_, ok, err := kv.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresBackend_NotifiesOtherHandlesAndDaemons(t *testing.T) {
	a, _ := newTestPostgresBackend(t)
	other, _ := newTestPostgresBackend(t)
	profile := testProfile()

	writer, _ := a.Open(profile)
	sibling, _ := a.Open(profile)
	remoteTab, _ := other.Open(profile)
	var gotWriter, gotSibling, gotRemote changeRecorder
	writer.Subscribe(gotWriter.record)
	sibling.Subscribe(gotSibling.record)
	remoteTab.Subscribe(gotRemote.record)
	waitForListeners(t, a, other)

	require.NoError(t, writer.SetMany(map[string]string{"savedJobs": `["x"]`, "token": "t"}))

	changes := gotSibling.waitFor(t, 1)
	assert.Equal(t, []string{"savedJobs", "token"}, changes[0].Keys)
	changes = gotRemote.waitFor(t, 1)
	assert.Equal(t, profile, changes[0].Profile)

	require.NoError(t, remoteTab.Delete("token"))
	changes = gotWriter.waitFor(t, 1)
	assert.Len(t, changes, 1)
	assert.Equal(t, []string{"token"}, changes[0].Keys)
}

func TestPostgresBackend_IgnoresMalformedNotification(t *testing.T) {
	b, logger := newTestPostgresBackend(t)
	waitForListeners(t, b)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := b.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, "not json")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return logger.Count("warn", "Malformed change notification") >= 1 }, 5*time.Second, 10*time.Millisecond)
}

// waitForListeners blocks until every backend's LISTEN connection is registered.
func waitForListeners(t *testing.T, backends ...*PostgresBackend) {
	t.Helper()
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		var n int
		err := backends[0].pool.QueryRow(ctx, `SELECT count(*) FROM pg_stat_activity WHERE query = $1`, "LISTEN "+notifyChannel).Scan(&n)
		return err == nil && n >= len(backends)
	}, 5*time.Second, 20*time.Millisecond)
}
