package codec

import (
	"io"

	"github.com/klauspost/compress/flate"
)

// DeflateCodec implements Codec for raw deflate streams (no zlib or gzip framing).
type DeflateCodec struct {
}

var _ Codec = DeflateCodec{}

func (c DeflateCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return flate.NewReader(src), nil
}

func (c DeflateCodec) NewEncoder(dst io.Writer, level Level) (io.WriteCloser, error) {
	return flate.NewWriter(dst, level.Clamp(flate.BestSpeed, 6, flate.BestCompression, flate.NoCompression, flate.BestCompression))
}

func (c DeflateCodec) Ext() string {
	return ".Z"
}

func (c DeflateCodec) ContentType() string {
	return "application/octet-stream"
}
