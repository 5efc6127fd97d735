package codec

import (
	"errors"
	"fmt"
	"io"
)

// ErrFinished is returned when writing to a Backend whose Finish has already been called.
var ErrFinished = errors.New("compression backend already finished")

// Backend is the writable byte sink that compresses everything written to it before it reaches the destination.
//
// Finish is distinct from Flush: Flush pushes pending bytes to the destination but leaves the stream open, while Finish
// emits the codec's terminal framing (end-of-stream blocks, checksums, etc.). The destination is never closed by the
// Backend; the caller owns it.
type Backend struct {
	alg      Algorithm
	enc      io.WriteCloser
	finished bool
}

// NewBackend creates a Backend compressing to the already-opened dst with the given algorithm and level.
func NewBackend(dst io.Writer, alg Algorithm, level Level) (*Backend, error) {
	if err := alg.Validate(); err != nil {
		return nil, err
	}

	enc, err := alg.Codec().NewEncoder(dst, level)
	if err != nil {
		return nil, fmt.Errorf("create %s encoder error: %w", alg, err)
	}

	return &Backend{alg: alg, enc: enc}, nil
}

func (b *Backend) Write(p []byte) (int, error) {
	if b.finished {
		return 0, ErrFinished
	}

	return b.enc.Write(p)
}

// Flush pushes buffered compressed data to the destination if the codec supports it.
//
// Codecs without a flush primitive (bzip2, xz) treat this as a no-op; their data reaches the destination on Finish.
func (b *Backend) Flush() error {
	if b.finished {
		return ErrFinished
	}

	if f, ok := b.enc.(interface{ Flush() error }); ok {
		return f.Flush()
	}

	return nil
}

// Finish flushes remaining data and terminates the compressed stream.
//
// Only the first call does any work; subsequent calls return nil. For None, Finish is a no-op.
func (b *Backend) Finish() error {
	if b.finished {
		return nil
	}

	b.finished = true
	if err := b.enc.Close(); err != nil {
		return fmt.Errorf("finish %s stream error: %w", b.alg, err)
	}

	return nil
}
