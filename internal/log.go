package internal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nguyengg/tarball/util"
)

// Prefix creates a consistent prefix for all messages about a single archive.
//
// i and n are the zero-based ordinal and expected count.
func Prefix(i, n int, name string) string {
	return fmt.Sprintf(`[%d/%d] "%s" - `, i+1, n, util.TruncateRightWithSuffix(filepath.Base(name), 30, "..."))
}

// NewLogger creates a logger writing to os.Stderr with the given prefix and no flags.
func NewLogger(prefix string) *log.Logger {
	return log.New(os.Stderr, prefix, 0)
}
