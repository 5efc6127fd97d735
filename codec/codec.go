package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Codec has methods to create compressor/encoder and decompressor/decoder.
type Codec interface {
	// NewDecoder creates a decoder to decompress contents from the given io.Reader.
	NewDecoder(src io.Reader) (io.ReadCloser, error)
	// NewEncoder creates an encoder to compress contents to the given io.Writer.
	//
	// Closing the returned io.WriteCloser finishes the compressed stream but does not close dst.
	NewEncoder(dst io.Writer, level Level) (io.WriteCloser, error)
	// Ext returns the file name extension of files compressed with this codec, including the leading dot.
	Ext() string
	// ContentType returns the content type of files compressed with this codec.
	ContentType() string
}

// Algorithm is the closed set of supported compression algorithms.
type Algorithm int

const (
	None Algorithm = iota
	Gzip
	Bzip2
	Deflate
	Lz4
	Xz
	Zstd
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm for names that don't map to any Algorithm.
var ErrUnknownAlgorithm = errors.New("unknown compression algorithm")

// Algorithms lists all supported algorithms in declaration order.
var Algorithms = []Algorithm{None, Gzip, Bzip2, Deflate, Lz4, Xz, Zstd}

// ParseAlgorithm returns the Algorithm with the given name or one of its aliases.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "", "none", "tar":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "bzip2", "bz2":
		return Bzip2, nil
	case "deflate":
		return Deflate, nil
	case "lz4":
		return Lz4, nil
	case "xz":
		return Xz, nil
	case "zstd", "zst":
		return Zstd, nil
	default:
		return None, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
}

func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case Deflate:
		return "deflate"
	case Lz4:
		return "lz4"
	case Xz:
		return "xz"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// Validate returns ErrUnknownAlgorithm if the algorithm is not one of the declared constants.
func (a Algorithm) Validate() error {
	switch a {
	case None, Gzip, Bzip2, Deflate, Lz4, Xz, Zstd:
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrUnknownAlgorithm, a)
	}
}

// Codec returns the Codec implementing this algorithm.
//
// Panics if the algorithm is not one of the declared constants.
func (a Algorithm) Codec() Codec {
	switch a {
	case None:
		return noneCodec{}
	case Gzip:
		return GzipCodec{}
	case Bzip2:
		return Bzip2Codec{}
	case Deflate:
		return DeflateCodec{}
	case Lz4:
		return Lz4Codec{}
	case Xz:
		return XzCodec{}
	case Zstd:
		return ZstdCodec{}
	default:
		panic(fmt.Sprintf("unknown algorithm: %v", a))
	}
}

// Ext returns the canonical file name suffix of the algorithm, which is empty for None.
func (a Algorithm) Ext() string {
	return a.Codec().Ext()
}

// Ext is a convenient function to call Algorithm.Ext.
func Ext(a Algorithm) string {
	return a.Ext()
}

// UnmarshalFlag implements go-flags's Unmarshaler so Algorithm can be used directly as an option type.
func (a *Algorithm) UnmarshalFlag(value string) (err error) {
	*a, err = ParseAlgorithm(value)
	return
}

// MarshalFlag implements go-flags's Marshaler.
func (a Algorithm) MarshalFlag() (string, error) {
	return a.String(), nil
}
