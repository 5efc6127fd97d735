package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the requested compression quality.
//
// Non-negative values are explicit numeric levels; the negative constants are symbolic presets. Each codec translates
// a Level into its own native range with Level.Clamp, so an explicit level is clamped to that codec's bounds rather
// than to 0-9.
type Level int

const (
	DefaultLevel Level = -1 - iota
	FastestLevel
	BestLevel
)

// ParseLevel parses a symbolic name (fastest, default, best) or a non-negative integer.
func ParseLevel(text string) (Level, error) {
	switch strings.ToLower(text) {
	case "", "default":
		return DefaultLevel, nil
	case "fastest", "fast", "min":
		return FastestLevel, nil
	case "best", "max":
		return BestLevel, nil
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return DefaultLevel, fmt.Errorf(`parse compression level "%s" error: %w`, text, err)
	}
	if n < 0 {
		return DefaultLevel, fmt.Errorf(`compression level must not be negative, got %d`, n)
	}

	return Level(n), nil
}

func (l Level) String() string {
	switch l {
	case DefaultLevel:
		return "default"
	case FastestLevel:
		return "fastest"
	case BestLevel:
		return "best"
	default:
		return strconv.Itoa(int(l))
	}
}

// Clamp translates the level into a codec's native range.
//
// The symbolic presets map to fastest, def, and best respectively. Explicit levels are clamped to [lo, hi].
func (l Level) Clamp(fastest, def, best, lo, hi int) int {
	switch l {
	case DefaultLevel:
		return def
	case FastestLevel:
		return fastest
	case BestLevel:
		return best
	}

	return min(max(int(l), lo), hi)
}

// UnmarshalFlag implements go-flags's Unmarshaler.
func (l *Level) UnmarshalFlag(value string) (err error) {
	*l, err = ParseLevel(value)
	return
}

// MarshalFlag implements go-flags's Marshaler.
func (l Level) MarshalFlag() (string, error) {
	return l.String(), nil
}
