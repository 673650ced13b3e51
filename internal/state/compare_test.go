package state

import (
	"testing"

	"jobdeck/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparison_CapacityAndIdempotentAdd(t *testing.T) {
	f := newFixture(t)
	c := f.manager.Compare
	for _, id := range []string{"X", "Y", "Z"} {
		require.NoError(t, c.Add(*job(id, id)))
	}
	assert.False(t, c.CanAddMore())
	before := f.raw(t, KeyCompareJobs)

	assert.ErrorIs(t, c.Add(*job("W", "W")), ErrCapacityExceeded)
	assert.Equal(t, []string{"X", "Y", "Z"}, ids(c.List()))

	assert.NoError(t, c.Add(*job("X", "X")))
	assert.Equal(t, []string{"X", "Y", "Z"}, ids(c.List()))
	assert.Equal(t, before, f.raw(t, KeyCompareJobs))
}

func TestComparison_RemoveContainsClear(t *testing.T) {
	f := newFixture(t)
	c := f.manager.Compare
	require.NoError(t, c.Add(*job("X", "X")))
	require.NoError(t, c.Add(*job("Y", "Y")))
	assert.True(t, c.Contains("Y"))
	assert.True(t, c.CanAddMore())

	removed, err := c.Remove("X")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, c.Contains("X"))
	assert.Equal(t, []string{"Y"}, ids(c.List()))

	removed, err = c.Remove("X")
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, c.ClearAll())
	assert.Empty(t, c.List())
}

func TestComparison_FailedPersistRollsBack(t *testing.T) {
	f := newFixture(t)
	c := f.manager.Compare
	require.NoError(t, c.Add(*job("X", "X")))
	f.kv.setFailWrites(true)

	assert.ErrorIs(t, c.Add(*job("Y", "Y")), errWriteFailed)
	_, err := c.Remove("X")
	assert.ErrorIs(t, err, errWriteFailed)
	assert.Equal(t, []string{"X"}, ids(c.List()))
}

func TestComparison_LoadCapsStoredSet(t *testing.T) {
	backend := storage.NewMemoryBackend()
	kv, _ := backend.Open("default")
	require.NoError(t, kv.Set(KeyCompareJobs, `[{"id":"A"},{"id":"A"},{"id":"B"},{"id":"C"},{"id":"D"}]`))

	f := newFixtureOn(t, backend, testConf())
	assert.Equal(t, []string{"A", "B", "C"}, ids(f.manager.Compare.List()))
	assert.Equal(t, 1, f.logger.Count("warn", "more than 3"))
}
