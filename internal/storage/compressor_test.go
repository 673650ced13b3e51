package storage

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompressor(t *testing.T) *SnapshotCompressor {
	t.Helper()
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c.(*SnapshotCompressor)
}

func TestSnapshotCompressor_PacksSavedJobs(t *testing.T) {
	c := newTestCompressor(t)

	var buf bytes.Buffer
	buf.WriteString(`{"version":1,"values":{"savedJobsObjects":"{`)
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&buf, `\"job-%d\":{\"id\":\"job-%d\",\"title\":\"Go developer\",\"company\":\"Acme\"},`, i, i)
	}
	buf.WriteString(`}"}}`)
	snapshot := buf.Bytes()

	packed, err := c.Compress(snapshot)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(packed, zstdMagic))
	assert.Less(t, len(packed), len(snapshot)/4)

	unpacked, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, snapshot, unpacked)
}

func TestSnapshotCompressor_EmptyProfile(t *testing.T) {
	c := newTestCompressor(t)

	packed, err := c.Compress([]byte(`{"version":1,"values":{}}`))
	require.NoError(t, err)
	unpacked, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"values":{}}`, string(unpacked))
}

func TestSnapshotCompressor_ReadsPlainJSONSnapshots(t *testing.T) {
	c := newTestCompressor(t)

	plain := []byte("\n{\"version\":1,\"values\":{\"token\":\"t\"}}\n")
	got, err := c.Decompress(plain)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestSnapshotCompressor_RejectsGarbage(t *testing.T) {
	c := newTestCompressor(t)

	_, err := c.Decompress([]byte("not a snapshot"))
	assert.Error(t, err)
	_, err = c.Decompress(append(append([]byte{}, zstdMagic...), 0x00, 0x01))
	assert.Error(t, err)
}
