package walk

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ErrBadPattern is wrapped by ConfigError when a glob cannot be compiled.
var ErrBadPattern = errors.New("syntax error in pattern")

// ConfigError is returned by NewRules when an ignore file cannot be read or a pattern is malformed.
type ConfigError struct {
	// Source is the ignore file name, or empty for override globs.
	Source string
	// Pattern is the offending pattern if any.
	Pattern string
	Err     error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Pattern != "" && e.Source != "":
		return fmt.Sprintf(`invalid pattern "%s" in ignore file "%s": %v`, e.Pattern, e.Source, e.Err)
	case e.Pattern != "":
		return fmt.Sprintf(`invalid ignore glob "%s": %v`, e.Pattern, e.Err)
	default:
		return fmt.Sprintf(`read ignore file "%s" error: %v`, e.Source, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Override is an ad-hoc glob after its polarity has been resolved.
type Override struct {
	// Glob is the gitignore-syntax glob without any leading negation marker.
	Glob string
	// Include is true if matching paths are force-included, false if they are excluded.
	Include bool
}

// FixGlob resolves the polarity of an ad-hoc glob.
//
// Ad-hoc globs are things to ignore, so the bare glob "X" excludes paths matching X, while "!X" force-includes paths
// matching X even if an ignore file excludes them.
func FixGlob(glob string) Override {
	if rest, ok := strings.CutPrefix(glob, "!"); ok {
		return Override{Glob: rest, Include: true}
	}

	return Override{Glob: glob, Include: false}
}

// Rules is a compiled set of ignore rules.
//
// Overrides take precedence over ignore files: the last override that matches a path decides whether the path is
// included. If no override matches, ignore files are consulted with gitignore semantics, later files and later lines
// winning over earlier ones. A path that matches nothing is included. The zero value and nil include everything.
type Rules struct {
	layers    []layer
	overrides []override
}

// layer holds the patterns of one ignore file.
//
// Patterns are matched relative to the directory containing the ignore file. Paths outside that directory are matched
// as the walk produced them, so with root "." the anchored pattern "/a.txt" matches "a.txt".
type layer struct {
	dir      string
	patterns []gitignore.Pattern
}

type override struct {
	Override
	pattern gitignore.Pattern
}

// NewRules reads the named ignore files in order and compiles the ad-hoc globs.
//
// Any returned error is a *ConfigError.
func NewRules(ignoreFiles, globs []string) (*Rules, error) {
	r := &Rules{}

	for _, name := range ignoreFiles {
		l, err := readLayer(name)
		if err != nil {
			return nil, err
		}

		r.layers = append(r.layers, l)
	}

	for _, glob := range globs {
		o := FixGlob(glob)
		if o.Glob == "" || !doublestar.ValidatePattern(o.Glob) {
			return nil, &ConfigError{Pattern: glob, Err: ErrBadPattern}
		}

		r.overrides = append(r.overrides, override{Override: o, pattern: gitignore.ParsePattern(o.Glob, nil)})
	}

	return r, nil
}

func readLayer(name string) (l layer, err error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return l, &ConfigError{Source: name, Err: err}
	}

	f, err := os.Open(name)
	if err != nil {
		return l, &ConfigError{Source: name, Err: err}
	}
	defer f.Close()

	l.dir = filepath.Dir(abs)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}

		if !strings.HasSuffix(line, `\ `) {
			line = strings.TrimRight(line, " \t")
		}

		if !doublestar.ValidatePattern(strings.TrimPrefix(line, "!")) {
			return l, &ConfigError{Source: name, Pattern: line, Err: ErrBadPattern}
		}

		l.patterns = append(l.patterns, gitignore.ParsePattern(line, nil))
	}

	if err = scanner.Err(); err != nil {
		return l, &ConfigError{Source: name, Err: err}
	}

	return l, nil
}

// Excluded returns true if the path found while walking root should be skipped.
//
// absRoot is root made absolute. The root itself is never excluded.
func (r *Rules) Excluded(root, absRoot, path string, isDir bool) bool {
	if r == nil || (len(r.layers) == 0 && len(r.overrides) == 0) {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	parts := split(rel)

	for i := len(r.overrides) - 1; i >= 0; i-- {
		if o := r.overrides[i]; o.pattern.Match(parts, isDir) != gitignore.NoMatch {
			return !o.Include
		}
	}

	if len(r.layers) == 0 {
		return false
	}

	abs := filepath.Join(absRoot, rel)
	given := split(strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/"))

	for i := len(r.layers) - 1; i >= 0; i-- {
		l := r.layers[i]

		p := given
		if rel, err := filepath.Rel(l.dir, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			p = split(rel)
		}

		for j := len(l.patterns) - 1; j >= 0; j-- {
			switch l.patterns[j].Match(p, isDir) {
			case gitignore.Exclude:
				return true
			case gitignore.Include:
				return false
			}
		}
	}

	return false
}

func split(path string) []string {
	return strings.Split(filepath.ToSlash(path), "/")
}
