package codec

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// Bzip2Codec implements Codec for bzip2 compression algorithm.
type Bzip2Codec struct {
}

var _ Codec = Bzip2Codec{}

func (c Bzip2Codec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(src, nil)
}

// NewEncoder creates a bzip2 writer whose level is the block size in units of 100k, from 1 to 9.
func (c Bzip2Codec) NewEncoder(dst io.Writer, level Level) (io.WriteCloser, error) {
	return bzip2.NewWriter(dst, &bzip2.WriterConfig{
		Level: level.Clamp(bzip2.BestSpeed, 6, bzip2.BestCompression, bzip2.BestSpeed, bzip2.BestCompression),
	})
}

func (c Bzip2Codec) Ext() string {
	return ".bz2"
}

func (c Bzip2Codec) ContentType() string {
	return "application/x-bzip2"
}
