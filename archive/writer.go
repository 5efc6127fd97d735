// Package archive writes tar archives from file system entries.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyengg/tarball/util"
)

var (
	// ErrFinished is returned by Writer.Append and Writer.Finish after Writer.Finish has been called.
	ErrFinished = errors.New("archive already finished")
	// ErrUnsafePath is returned for paths that would escape the extraction directory.
	ErrUnsafePath = errors.New("path contains .. component")
)

// Finisher is the sink that a Writer writes its container to.
//
// Finish is called exactly once after the container's trailer has been written; codec.Backend implements this.
type Finisher interface {
	io.Writer
	Finish() error
}

// Writer appends file system entries to a tar archive.
//
// The Writer does not own the underlying file, only the sink's stream framing: Finish writes the tar trailer then
// finishes the sink. Finish must be called exactly once after the last Append; without it the archive is truncated.
type Writer struct {
	dst            Finisher
	tw             *tar.Writer
	mode           Mode
	followSymlinks bool
	buf            []byte
	finished       bool
}

// NewWriter creates a new Writer writing to dst with the given metadata policy.
//
// If followSymlinks is true, Append archives the targets of symlinks instead of the links.
func NewWriter(dst Finisher, mode Mode, followSymlinks bool) *Writer {
	return &Writer{
		dst:            dst,
		tw:             tar.NewWriter(dst),
		mode:           mode,
		followSymlinks: followSymlinks,
		buf:            make([]byte, 32*1024),
	}
}

// Append reads the metadata of the named file and adds it to the archive.
//
// Regular files have their contents streamed into the archive. Directories are added as entries only; their children
// are not added, see walk.Walker for that.
func (w *Writer) Append(path string) error {
	if w.finished {
		return ErrFinished
	}

	var (
		fi   fs.FileInfo
		link string
		err  error
	)

	if w.followSymlinks {
		fi, err = os.Stat(path)
	} else {
		fi, err = os.Lstat(path)
	}
	if err != nil {
		return fmt.Errorf(`stat file "%s" error: %w`, path, err)
	}

	if fi.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return fmt.Errorf(`read symlink "%s" error: %w`, path, err)
		}
	}

	return w.AppendEntry(path, fi, link)
}

// AppendEntry is a variant of Append that uses metadata the caller already has.
//
// The fi argument must describe path the same way Append would have (os.Stat when following symlinks, os.Lstat
// otherwise), and link is the symlink target if fi is a symlink.
func (w *Writer) AppendEntry(path string, fi fs.FileInfo, link string) error {
	if w.finished {
		return ErrFinished
	}

	name, err := Name(path)
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}

	hdr, err := w.header(name, fi, link)
	if err != nil {
		return fmt.Errorf(`create tar header for "%s" error: %w`, path, err)
	}

	if err = w.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf(`write tar header for "%s" error: %w`, path, err)
	}

	if hdr.Typeflag != tar.TypeReg {
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf(`open file "%s" error: %w`, path, err)
	}
	defer src.Close()

	if _, err = io.CopyBuffer(w.tw, src, w.buf); err != nil {
		return fmt.Errorf(`add file "%s" to archive error: %w`, path, err)
	}

	return nil
}

func (w *Writer) header(name string, fi fs.FileInfo, link string) (*tar.Header, error) {
	hdr, err := tar.FileInfoHeader(fi, link)
	if err != nil {
		return nil, err
	}

	// can't use path.Join because that will Clean (i.e. remove the / suffix for directory).
	hdr.Name = name
	if fi.IsDir() {
		hdr.Name += "/"
	}

	if w.mode == Minimal {
		hdr.Uid, hdr.Gid = 0, 0
		hdr.Uname, hdr.Gname = "", ""
		hdr.ModTime = DeterministicModTime
		hdr.AccessTime, hdr.ChangeTime = time.Time{}, time.Time{}
		hdr.PAXRecords = nil

		if fi.IsDir() || fi.Mode()&0o100 != 0 {
			hdr.Mode = 0o755
		} else {
			hdr.Mode = 0o644
		}
	}

	return hdr, nil
}

// Finish writes the tar trailer and then finishes the underlying sink.
//
// Both steps always run; the first error is returned. Subsequent calls return ErrFinished without writing anything.
func (w *Writer) Finish() error {
	if w.finished {
		return ErrFinished
	}
	w.finished = true

	if err := util.ChainCloser(w.tw.Close, w.dst.Finish)(); err != nil {
		return fmt.Errorf("finish archive error: %w", err)
	}

	return nil
}

// Name returns the slash-separated name of the file in the archive.
//
// Volume names and leading separators are dropped so that names are always relative, "." components are removed, and
// paths with ".." components are rejected with ErrUnsafePath. An empty name means the path is the current directory or
// the file system root and has no entry of its own.
func Name(path string) (string, error) {
	name := filepath.Clean(path)
	name = filepath.ToSlash(name[len(filepath.VolumeName(name)):])
	name = strings.TrimLeft(name, "/")

	if name == "." {
		return "", nil
	}

	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", fmt.Errorf(`invalid archive path "%s": %w`, path, ErrUnsafePath)
		}
	}

	return name, nil
}
