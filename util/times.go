package util

import (
	"fmt"
	"os"
	"time"

	"github.com/djherbis/times"
)

// ModTime returns the modification time of the named file, following symlinks.
func ModTime(name string) (time.Time, error) {
	ts, err := times.Stat(name)
	if err != nil {
		return time.Time{}, fmt.Errorf(`stat file "%s" error: %w`, name, err)
	}

	return ts.ModTime(), nil
}

// CopyTimes sets the access and modification times of dst to those of src.
func CopyTimes(dst, src string) error {
	ts, err := times.Stat(src)
	if err != nil {
		return fmt.Errorf(`stat file "%s" error: %w`, src, err)
	}

	if err = os.Chtimes(dst, ts.AccessTime(), ts.ModTime()); err != nil {
		return fmt.Errorf(`set times of "%s" error: %w`, dst, err)
	}

	return nil
}
