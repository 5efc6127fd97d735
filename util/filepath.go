package util

import (
	"path/filepath"
	"strings"
)

// SplitArchiveName splits the base name of an archive into its stem and suffix.
//
// suffix is the extension the archive was written with, such as ".tar.zst", so "foo.v1.2.tar.zst" splits into
// "foo.v1.2" and ".tar.zst". If the base name does not end with suffix or is nothing but suffix, the last extension
// as reported by filepath.Ext is split off instead.
func SplitArchiveName(name, suffix string) (stem, ext string) {
	base := filepath.Base(name)
	if suffix != "" && len(base) > len(suffix) && strings.HasSuffix(base, suffix) {
		return base[:len(base)-len(suffix)], suffix
	}

	if ext = filepath.Ext(base); ext == base {
		return base, ""
	}

	return strings.TrimSuffix(base, ext), ext
}
