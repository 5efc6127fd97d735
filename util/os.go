package util

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
)

// AtomicFile is a file that only appears under its final name once Commit succeeds.
//
// Writes go to a hidden temporary file in the same directory as the final name so the rename in Commit never crosses
// file systems. Abort (or a failed Commit) removes the temporary file, so an interrupted write never leaves a partial
// file under the final name.
type AtomicFile struct {
	*os.File
	name string
	done bool
}

// CreateAtomic creates a temporary file that will become name upon AtomicFile.Commit.
//
// An existing file with the same name is replaced on Commit, matching os.Create. Like os.OpenFile, perm is subject to
// the process umask.
func CreateAtomic(name string, perm os.FileMode) (*AtomicFile, error) {
	dir, base := filepath.Split(name)

	for range 10000 {
		tmp := filepath.Join(dir, "."+base+"."+strconv.FormatUint(uint64(rand.Uint32()), 10))

		f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf(`create temporary file for "%s" error: %w`, name, err)
		}

		return &AtomicFile{File: f, name: name}, nil
	}

	return nil, fmt.Errorf(`create temporary file for "%s" error: %w`, name, os.ErrExist)
}

// Name returns the final name of the file, not the temporary name.
func (f *AtomicFile) Name() string {
	return f.name
}

// TempName returns the name of the temporary file being written to.
func (f *AtomicFile) TempName() string {
	return f.File.Name()
}

// Commit syncs and closes the temporary file, then renames it to the final name.
//
// On any error the temporary file is removed. Commit and Abort are no-ops once either has been called.
func (f *AtomicFile) Commit() (err error) {
	if f.done {
		return nil
	}
	f.done = true

	tmp := f.File.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = ChainCloser(f.File.Sync, f.File.Close)(); err != nil {
		return fmt.Errorf(`close temporary file "%s" error: %w`, tmp, err)
	}

	if err = os.Rename(tmp, f.name); err != nil {
		return fmt.Errorf(`rename "%s" to "%s" error: %w`, tmp, f.name, err)
	}

	return nil
}

// Abort closes and removes the temporary file.
func (f *AtomicFile) Abort() error {
	if f.done {
		return nil
	}
	f.done = true

	err := f.File.Close()
	if err2 := os.Remove(f.File.Name()); err2 != nil && !errors.Is(err2, os.ErrNotExist) {
		err = errors.Join(err, err2)
	}

	return err
}
