package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/tarball"
	"github.com/nguyengg/tarball/archive"
	"github.com/nguyengg/tarball/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *Command {
	t.Helper()

	c := &Command{}
	p := NewParser(c)
	p.Options &^= flags.PrintErrors
	rest, err := p.ParseArgs(args)
	require.NoErrorf(t, err, "ParseArgs(%v) error = %v", args, err)
	assert.Empty(t, rest)

	return c
}

func TestCommand_Apply(t *testing.T) {
	c := parse(t, "-x", "-l", "9", "-m", "-L", "-o", "out.tar.xz", "-I", "a", "-I", "b", "-i", "*.log", "-qq", "-v", "foo", "bar")

	assert.Equal(t, []flags.Filename{"foo", "bar"}, c.Args.Paths)
	assert.Len(t, c.Quiet, 2)
	assert.Len(t, c.Verbose, 1)

	opts := &tarball.Options{
		Algorithm:   codec.Gzip,
		Level:       codec.DefaultLevel,
		IgnoreFiles: []string{"from-config"},
	}
	c.apply(opts)

	assert.Equal(t, &tarball.Options{
		Algorithm:      codec.Xz,
		Level:          codec.Level(9),
		Mode:           archive.Minimal,
		FollowSymlinks: true,
		Output:         "out.tar.xz",
		IgnoreFiles:    []string{"from-config", "a", "b"},
		Ignore:         []string{"*.log"},
	}, opts)
}

func TestCommand_ApplyKeepsConfigValues(t *testing.T) {
	c := parse(t, "foo")

	opts := &tarball.Options{Algorithm: codec.Zstd, Level: codec.BestLevel, Mode: archive.Minimal}
	c.apply(opts)

	assert.Equal(t, &tarball.Options{Algorithm: codec.Zstd, Level: codec.BestLevel, Mode: archive.Minimal}, opts)
}

func TestCommand_Algorithm(t *testing.T) {
	tests := []struct {
		args []string
		want codec.Algorithm
	}{
		{args: []string{"-a", "gz"}, want: codec.Gzip},
		{args: []string{"--algorithm=lz4"}, want: codec.Lz4},
		{args: []string{"-a", "deflate"}, want: codec.Deflate},
		{args: []string{"-b"}, want: codec.Bzip2},
		{args: []string{"-z"}, want: codec.Zstd},
		{args: []string{"-g"}, want: codec.Gzip},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			c := parse(t, append(tt.args, "foo")...)

			opts := &tarball.Options{}
			c.apply(opts)
			assert.Equal(t, tt.want, opts.Algorithm)
		})
	}
}

func TestCommand_InvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"-a", "rar", "foo"},
		{"-l", "high", "foo"},
		{},
	} {
		c := &Command{}
		p := NewParser(c)
		p.Options &^= flags.PrintErrors
		_, err := p.ParseArgs(args)
		assert.Errorf(t, err, "ParseArgs(%v)", args)
	}
}

func TestCommand_Execute(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".tarball", []byte("[defaults]\nalgorithm = gzip\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join("foo", "bar"), 0755))

	c := parse(t, "-q", "foo")
	require.NoError(t, c.Execute(nil))

	_, err := os.Stat("foo.tar.gz")
	assert.NoErrorf(t, err, "algorithm from the config file must be used")
}
