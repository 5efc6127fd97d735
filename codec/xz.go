package codec

import (
	"io"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// XzCodec implements Codec for xz compression algorithm.
type XzCodec struct {
}

var _ Codec = XzCodec{}

// xzDictCaps follows the dictionary sizes of the xz(1) presets -0 through -9.
var xzDictCaps = [...]int{
	256 << 10,
	1 << 20, 2 << 20, 4 << 20,
	4 << 20, 8 << 20, 8 << 20,
	16 << 20, 32 << 20, 64 << 20,
}

func (c XzCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}

// NewEncoder creates an xz writer. The library has no notion of levels so the level picks a dictionary size and match
// finder the same way the xz presets do.
func (c XzCodec) NewEncoder(dst io.Writer, level Level) (io.WriteCloser, error) {
	n := level.Clamp(0, 6, 9, 0, 9)

	cfg := xz.WriterConfig{DictCap: xzDictCaps[n], Matcher: lzma.BinaryTree}
	if n <= 3 {
		cfg.Matcher = lzma.HashTable4
	}

	return cfg.NewWriter(dst)
}

func (c XzCodec) Ext() string {
	return ".xz"
}

func (c XzCodec) ContentType() string {
	return "application/x-xz"
}
