// Package walk traverses directory trees in a deterministic order while applying ignore rules.
package walk

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
)

// ErrSymlinkLoop is returned when following symlinks leads back to a directory that is being walked.
var ErrSymlinkLoop = errors.New("symlink loop detected")

// Entry is a path discovered during the walk along with its metadata.
type Entry struct {
	// Path is the walk root joined with the entry's path relative to the root.
	Path string
	// Info is from os.Lstat, or os.Stat when following symlinks.
	Info fs.FileInfo
	// Link is the symlink target if Info describes a symlink.
	Link string
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Info.IsDir()
}

// Walker walks a single root.
//
// There are no built-in filters: hidden files and VCS directories are walked like everything else, so the result is
// determined by Rules alone. The root is always emitted. When a directory is excluded, its contents are never visited.
type Walker struct {
	root           string
	absRoot        string
	rules          *Rules
	followSymlinks bool
}

// New creates a Walker for the given root.
//
// If followSymlinks is true, symlinks are resolved and their targets emitted (and descended into if they are
// directories) in place of the links; otherwise links are emitted as is and never descended into.
func New(root string, rules *Rules, followSymlinks bool) *Walker {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = filepath.Clean(root)
	}

	return &Walker{
		root:           root,
		absRoot:        absRoot,
		rules:          rules,
		followSymlinks: followSymlinks,
	}
}

// Entries returns the entries of the tree in depth-first order with siblings sorted by name.
//
// Comparing names per directory rather than whole path strings keeps children adjacent to their parent: "a/b" comes
// before "a.txt" even though '.' sorts before '/'. Each call starts a fresh walk. The first error ends the sequence.
func (w *Walker) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		fi, err := w.stat(w.root)
		if err != nil {
			yield(Entry{}, err)
			return
		}

		w.walk(w.root, fi, nil, yield)
	}
}

func (w *Walker) walk(path string, fi fs.FileInfo, ancestors []fs.FileInfo, yield func(Entry, error) bool) bool {
	e := Entry{Path: path, Info: fi}

	if fi.Mode()&fs.ModeSymlink != 0 {
		link, err := os.Readlink(path)
		if err != nil {
			yield(Entry{}, fmt.Errorf(`read symlink "%s" error: %w`, path, err))
			return false
		}

		e.Link = link
	}

	if !fi.IsDir() {
		return yield(e, nil)
	}

	for _, a := range ancestors {
		if os.SameFile(a, fi) {
			yield(Entry{}, fmt.Errorf(`walk "%s" error: %w`, path, ErrSymlinkLoop))
			return false
		}
	}

	if !yield(e, nil) {
		return false
	}

	names, err := readDirNames(path)
	if err != nil {
		yield(Entry{}, err)
		return false
	}

	ancestors = append(ancestors, fi)

	for _, name := range names {
		child := filepath.Join(path, name)

		cfi, err := w.stat(child)
		if err != nil {
			yield(Entry{}, err)
			return false
		}

		if w.rules.Excluded(w.root, w.absRoot, child, cfi.IsDir()) {
			continue
		}

		if !w.walk(child, cfi, ancestors, yield) {
			return false
		}
	}

	return true
}

func (w *Walker) stat(path string) (fi fs.FileInfo, err error) {
	if w.followSymlinks {
		fi, err = os.Stat(path)
	} else {
		fi, err = os.Lstat(path)
	}
	if err != nil {
		return nil, fmt.Errorf(`stat file "%s" error: %w`, path, err)
	}

	return fi, nil
}

func readDirNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf(`open directory "%s" error: %w`, path, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf(`read directory "%s" error: %w`, path, err)
	}

	slices.Sort(names)
	return names, nil
}
