package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec implements Codec for gzip compression algorithm.
type GzipCodec struct {
}

var _ Codec = GzipCodec{}

func (c GzipCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(src)
}

// NewEncoder creates a gzip writer. The gzip header carries no name or modification time so output only depends on
// input and level.
func (c GzipCodec) NewEncoder(dst io.Writer, level Level) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(dst, level.Clamp(gzip.BestSpeed, 6, gzip.BestCompression, gzip.NoCompression, gzip.BestCompression))
}

func (c GzipCodec) Ext() string {
	return ".gz"
}

func (c GzipCodec) ContentType() string {
	return "application/gzip"
}
