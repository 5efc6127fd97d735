package archive

import (
	"fmt"
	"strings"
	"time"
)

// Mode controls how much file system metadata is recorded per entry.
type Mode int

const (
	// Normal records the full metadata: owner, group, permissions, and modification time.
	Normal Mode = iota
	// Minimal records only what identifies the file so that equivalent trees always produce identical archives.
	//
	// Owner and group are 0 with empty names, the modification time is DeterministicModTime, and permissions are
	// 0755 for directories and owner-executable files, 0644 for everything else.
	Minimal
)

// DeterministicModTime is the modification time of every entry in Minimal archives.
//
// Some tools mishandle a zero timestamp, so a fixed non-zero one is used instead.
var DeterministicModTime = time.Unix(1153704088, 0)

// ParseMode returns the Mode with the given name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "normal":
		return Normal, nil
	case "minimal":
		return Minimal, nil
	default:
		return Normal, fmt.Errorf(`unknown archive mode "%s"`, name)
	}
}

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Minimal:
		return "minimal"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Ext returns the file name extension for archives of this mode.
//
// Both modes produce plain tar containers.
func (m Mode) Ext() string {
	return ".tar"
}
