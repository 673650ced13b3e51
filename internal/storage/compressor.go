package storage

import (
	"bytes"
	"fmt"

	"jobdeck/internal/storage/interfaces"

	"github.com/klauspost/compress/zstd"
)

// maxSnapshotSize bounds a decoded profile snapshot. Saved jobs carry full descriptions,
// but a profile past this size is a corrupt or hostile file.
const maxSnapshotSize = 64 << 20

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// SnapshotCompressor packs profile snapshots with zstd. Snapshots that are plain JSON,
// because they were written by hand or before compression, are read as they are.
type SnapshotCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstdCompressor() (interfaces.CompressorInterface, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("snapshot encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxSnapshotSize))
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("snapshot decoder: %w", err)
	}
	return &SnapshotCompressor{encoder: encoder, decoder: decoder}, nil
}

func (c *SnapshotCompressor) Compress(snapshot []byte) ([]byte, error) {
	return c.encoder.EncodeAll(snapshot, nil), nil
}

func (c *SnapshotCompressor) Decompress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
			return data, nil
		}
	}
	return c.decoder.DecodeAll(data, nil)
}

func (c *SnapshotCompressor) Close() {
	_ = c.encoder.Close()
	c.decoder.Close()
}
