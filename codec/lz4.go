package codec

import (
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Lz4Codec implements Codec for the lz4 frame format.
type Lz4Codec struct {
}

var _ Codec = Lz4Codec{}

// lz4Levels maps native numeric levels to lz4.CompressionLevel; 0 is the fast (non-HC) compressor.
var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

func (c Lz4Codec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(src)), nil
}

func (c Lz4Codec) NewEncoder(dst io.Writer, level Level) (io.WriteCloser, error) {
	w := lz4.NewWriter(dst)
	if err := w.Apply(
		lz4.CompressionLevelOption(lz4Levels[level.Clamp(0, 0, 9, 0, 9)]),
		lz4.ConcurrencyOption(1)); err != nil {
		return nil, fmt.Errorf("configure lz4 writer error: %w", err)
	}

	return w, nil
}

func (c Lz4Codec) Ext() string {
	return ".lz4"
}

func (c Lz4Codec) ContentType() string {
	return "application/x-lz4"
}
