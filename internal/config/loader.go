package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-ini/ini"
)

// FileName is the name of the configuration file that Load searches for.
const FileName = ".tarball"

// Loader can be used for loading .tarball configuration.
type Loader struct {
	// Profile is the AWS profile to use, taking precedence over the profile setting in the [upload] section.
	Profile string

	cfg           *ini.File
	s3clientCache sync.Map
}

// Load will traverse the directory hierarchy upwards to find the first ".tarball" file available and load its
// contents into the Loader.
//
// The name of the .tarball file is returned, or empty string if none was found.
func (l *Loader) Load(ctx context.Context) (string, error) {
	cur, err := os.Getwd()
	if err != nil {
		return "", err
	}

	var path string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		path = filepath.Join(cur, FileName)
		fi, err := os.Stat(path)
		if err == nil && !fi.IsDir() {
			break
		}
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", nil
		}

		cur = parent
	}

	l.cfg, err = ini.Load(path)
	if err != nil {
		l.cfg = ini.Empty()
		return path, err
	}

	return path, nil
}

// LoadFile loads the named file into the Loader without searching.
func (l *Loader) LoadFile(name string) (err error) {
	if l.cfg, err = ini.Load(name); err != nil {
		l.cfg = ini.Empty()
	}

	return
}

// DefaultLoader is the default Loader instance for package-level methods.
var DefaultLoader = &Loader{cfg: ini.Empty()}

// Load calls Loader.Load on the DefaultLoader instance.
func Load(ctx context.Context) (string, error) {
	return DefaultLoader.Load(ctx)
}
