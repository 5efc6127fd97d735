package internal

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
	"golang.org/x/time/rate"
)

// NewProgress returns a factory for the per-archive progress sinks of tarball.Options.Progress.
//
// If stderr is a terminal, each archive gets a spinner that counts the bytes archived so far. Otherwise, the logger
// prints `archived X so far` at most once every interval, and `archived X in total` once the archive is done.
func NewProgress(logger *log.Logger, interval time.Duration) func(name string) io.WriteCloser {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return func(name string) io.WriteCloser {
			return &barLogger{description: fmt.Sprintf(`archiving "%s"`, name)}
		}
	}

	return func(name string) io.WriteCloser {
		return &logLogger{
			logger: logger,
			name:   name,
			rate:   &rate.Sometimes{Interval: interval},
		}
	}
}

type logLogger struct {
	logger  *log.Logger
	name    string
	rate    *rate.Sometimes
	written uint64
}

func (l *logLogger) Write(p []byte) (n int, err error) {
	n = len(p)
	l.written += uint64(n)

	l.rate.Do(func() {
		l.logger.Printf(`"%s" archived %s so far`, l.name, humanize.IBytes(l.written))
	})

	return n, nil
}

func (l *logLogger) Close() error {
	l.logger.Printf(`"%s" archived %s in total`, l.name, humanize.IBytes(l.written))

	return nil
}

type barLogger struct {
	bar         *progressbar.ProgressBar
	description string
}

func (b *barLogger) Write(p []byte) (n int, err error) {
	if b.bar == nil {
		// create on first write so that an archive that fails early doesn't render anything.
		b.bar = DefaultBytes(-1, b.description)
	}

	// ignore all errors from progress bar.
	_, _ = b.bar.Write(p)

	return len(p), nil
}

func (b *barLogger) Close() error {
	if b.bar != nil {
		return b.bar.Close()
	}

	return nil
}

// DefaultBytes is equivalent to progressbar.DefaultBytes but with higher progressbar.OptionThrottle.
//
// Pass -1 as maxBytes for a spinner.
func DefaultBytes(maxBytes int64, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}
