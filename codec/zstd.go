package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdCodec implements Codec for zstd compression algorithm.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

func (c ZstdCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	return &zstdDecoder{dec}, nil
}

type zstdDecoder struct {
	*zstd.Decoder
}

func (d *zstdDecoder) Close() error {
	d.Decoder.Close()
	return nil
}

// NewEncoder creates a zstd writer. Levels follow the reference implementation's 1-21 scale and are mapped onto the
// encoder's speed presets with zstd.EncoderLevelFromZstd.
//
// Concurrency is pinned to 1 to keep a single writer per archive.
func (c ZstdCodec) NewEncoder(dst io.Writer, level Level) (io.WriteCloser, error) {
	return zstd.NewWriter(dst,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level.Clamp(1, 3, 21, 1, 21))),
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true))
}

func (c ZstdCodec) Ext() string {
	return ".zst"
}

func (c ZstdCodec) ContentType() string {
	return "application/zstd"
}
