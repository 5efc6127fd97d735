// Package tarball creates compressed tar archives from file system paths.
//
// Each input path is walked in a deterministic order with ignore rules applied, its entries are appended to a tar
// archive, and the archive stream is compressed with the chosen codec. See Create for the two output shapes.
package tarball

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/nguyengg/tarball/archive"
	"github.com/nguyengg/tarball/codec"
	"github.com/nguyengg/tarball/util"
	"github.com/nguyengg/tarball/walk"
)

// ErrNoInput is returned by Create when no paths are given.
var ErrNoInput = errors.New("no input paths")

// Options customises Create.
type Options struct {
	// Algorithm is the compression applied to the tar stream.
	//
	// Default to codec.None.
	Algorithm codec.Algorithm

	// Level is the compression level, translated to the algorithm's native range.
	//
	// Default to codec.DefaultLevel.
	Level codec.Level

	// Mode controls how much file metadata is recorded.
	//
	// Default to archive.Normal.
	Mode archive.Mode

	// FollowSymlinks archives the targets of symlinks instead of the links themselves.
	FollowSymlinks bool

	// Output is the name of the single archive that all paths are merged into.
	//
	// If empty, each path gets its own archive named by OutputName.
	Output string

	// IgnoreFiles are gitignore-style pattern files applied in the given order; later files take precedence.
	IgnoreFiles []string

	// Ignore are override globs with the highest precedence.
	//
	// A bare glob excludes matching paths, a glob prefixed with "!" includes them.
	Ignore []string

	// Verbosity controls what is printed to Stdout.
	//
	// At 1 (default) the name of every created archive is printed. At 2 or higher, the path of every archived entry is
	// also printed. At 0 or lower nothing is printed.
	Verbosity int

	// Stdout is where the names of created archives and archived entries are printed.
	//
	// Default to os.Stdout.
	Stdout io.Writer

	// Progress, if given, is called once per archive to create a sink that receives the uncompressed tar stream.
	//
	// The sink is closed once the archive has been finished or abandoned. Write errors from the sink are ignored.
	Progress func(name string) io.WriteCloser
}

// Create archives the given paths and returns the names of the archives created.
//
// If Options.Output is given, all paths are sorted and merged into that archive, whose access and modification times
// are then copied from the most recently modified input. Otherwise, each path is archived to its own file named by
// OutputName, which receives that path's timestamps.
//
// Ignore rules are validated before any archive is opened. Archives are written to a temporary file and only renamed
// into place once finished, so a failed run never leaves a partial archive under its final name. A failure to copy
// timestamps is reported as an error even though the archive itself is complete.
func Create(ctx context.Context, paths []string, optFns ...func(*Options)) ([]string, error) {
	opts := &Options{
		Algorithm: codec.None,
		Level:     codec.DefaultLevel,
		Mode:      archive.Normal,
		Verbosity: 1,
		Stdout:    os.Stdout,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	if len(paths) == 0 {
		return nil, ErrNoInput
	}

	if err := opts.Algorithm.Validate(); err != nil {
		return nil, err
	}

	rules, err := walk.NewRules(opts.IgnoreFiles, opts.Ignore)
	if err != nil {
		return nil, err
	}

	c := &creator{opts: opts, rules: rules}

	if opts.Output != "" {
		sorted := slices.Clone(paths)
		slices.Sort(sorted)

		if err = c.create(ctx, opts.Output, sorted, ""); err != nil {
			if isTimestampError(err) {
				return []string{opts.Output}, err
			}

			return nil, err
		}

		return []string{opts.Output}, nil
	}

	created := make([]string, 0, len(paths))
	for _, path := range paths {
		name := OutputName(path, opts.Algorithm)
		if err = c.create(ctx, name, []string{path}, path); err != nil {
			if isTimestampError(err) {
				created = append(created, name)
			}

			return created, err
		}

		created = append(created, name)
	}

	return created, nil
}

// OutputName returns the name of the archive for the given path in per-path mode.
//
// The name is the cleaned path followed by ".tar" and the algorithm's extension, so "foo" becomes "foo.tar.zst" with
// codec.Zstd and "foo/" becomes "foo.tar" with codec.None.
func OutputName(path string, alg codec.Algorithm) string {
	return filepath.Clean(path) + archive.Normal.Ext() + alg.Ext()
}

type creator struct {
	opts  *Options
	rules *walk.Rules
}

// create writes one archive containing the trees of the given paths.
//
// If timesFrom is empty, the timestamps are copied from the most recently modified of paths.
func (c *creator) create(ctx context.Context, name string, paths []string, timesFrom string) (err error) {
	f, err := util.CreateAtomic(name, 0666)
	if err != nil {
		return err
	}

	self, err := f.Stat()
	if err != nil {
		_ = f.Abort()
		return fmt.Errorf(`stat "%s" error: %w`, f.TempName(), err)
	}

	var sink io.WriteCloser
	if c.opts.Progress != nil {
		sink = c.opts.Progress(name)
	}

	be, err := codec.NewBackend(f, c.opts.Algorithm, c.opts.Level)
	if err != nil {
		_, _ = f.Abort(), closeSink(sink)
		return fmt.Errorf(`create "%s" error: %w`, name, err)
	}

	w := archive.NewWriter(&teeFinisher{Finisher: be, tee: sink}, c.opts.Mode, c.opts.FollowSymlinks)

	// on any failure the writer is finished (if not yet) and the temporary file removed; the original error wins.
	finished := false
	defer func() {
		if err != nil {
			if !finished {
				_ = w.Finish()
			}
			_ = f.Abort()
		}
		_ = closeSink(sink)
	}()

	var (
		newest      string
		newestMtime time.Time
	)

	for _, path := range paths {
		if timesFrom == "" {
			var mtime time.Time
			if mtime, err = util.ModTime(path); err != nil {
				return err
			}

			// >= so that the last of equally new paths in sorted order wins.
			if newest == "" || !mtime.Before(newestMtime) {
				newest, newestMtime = path, mtime
			}
		}

		if err = c.appendTree(ctx, w, path, self); err != nil {
			return err
		}
	}

	finished = true
	if err = w.Finish(); err != nil {
		return fmt.Errorf(`finish "%s" error: %w`, name, err)
	}

	if err = f.Commit(); err != nil {
		return err
	}

	if timesFrom == "" {
		timesFrom = newest
	}

	if err = util.CopyTimes(name, timesFrom); err != nil {
		// Abort is a no-op after Commit so the complete archive stays.
		return &TimestampError{Name: name, Source: timesFrom, Err: err}
	}

	if c.opts.Verbosity >= 1 {
		_, _ = fmt.Fprintf(c.opts.Stdout, "%s created\n", name)
	}

	return nil
}

// appendTree walks root and appends every entry except the archive being written.
func (c *creator) appendTree(ctx context.Context, w *archive.Writer, root string, self fs.FileInfo) error {
	for e, err := range walk.New(root, c.rules, c.opts.FollowSymlinks).Entries() {
		if err != nil {
			return fmt.Errorf(`walk "%s" error: %w`, root, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if os.SameFile(e.Info, self) {
			continue
		}

		if c.opts.Verbosity >= 2 {
			_, _ = fmt.Fprintln(c.opts.Stdout, e.Path)
		}

		if err = w.AppendEntry(e.Path, e.Info, e.Link); err != nil {
			return err
		}
	}

	return nil
}

// TimestampError is returned by Create when a finished archive could not receive its source's timestamps.
//
// The archive named by Name exists and is valid when this error is returned.
type TimestampError struct {
	Name   string
	Source string
	Err    error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf(`copy timestamps from "%s" to "%s" error: %v`, e.Source, e.Name, e.Err)
}

func (e *TimestampError) Unwrap() error {
	return e.Err
}

func isTimestampError(err error) bool {
	var te *TimestampError
	return errors.As(err, &te)
}

// teeFinisher copies everything written to the archive.Finisher to an optional progress sink.
type teeFinisher struct {
	archive.Finisher
	tee io.Writer
}

func (t *teeFinisher) Write(p []byte) (n int, err error) {
	if n, err = t.Finisher.Write(p); n > 0 && t.tee != nil {
		_, _ = t.tee.Write(p[:n])
	}

	return
}

func closeSink(sink io.Closer) error {
	if sink == nil {
		return nil
	}

	return sink.Close()
}
