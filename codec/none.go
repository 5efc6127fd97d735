package codec

import (
	"io"

	"github.com/nguyengg/tarball/util"
)

// noneCodec passes bytes through unchanged.
type noneCodec struct {
}

var _ Codec = noneCodec{}

func (c noneCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(src), nil
}

func (c noneCodec) NewEncoder(dst io.Writer, _ Level) (io.WriteCloser, error) {
	return &util.WriteNoopCloser{Writer: dst}, nil
}

func (c noneCodec) Ext() string {
	return ""
}

func (c noneCodec) ContentType() string {
	return "application/x-tar"
}
