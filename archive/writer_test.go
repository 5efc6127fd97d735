package archive

import (
	"archive/tar"
	"bytes"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sink implements Finisher over a bytes.Buffer and counts calls to Finish.
type sink struct {
	bytes.Buffer
	finishes int
}

func (s *sink) Finish() error {
	s.finishes++
	return nil
}

func readHeaders(t *testing.T, data []byte) (hdrs []*tar.Header, contents map[string][]byte) {
	t.Helper()

	contents = make(map[string][]byte)
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return
		}
		require.NoErrorf(t, err, "tar.Reader.Next() error = %v", err)

		hdrs = append(hdrs, hdr)
		if hdr.Typeflag == tar.TypeReg {
			contents[hdr.Name], err = io.ReadAll(tr)
			require.NoError(t, err)
		}
	}
}

func names(hdrs []*tar.Header) []string {
	names := make([]string, len(hdrs))
	for i, hdr := range hdrs {
		names[i] = hdr.Name
	}

	return names
}

func TestWriter_Append(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "my-dir", "path"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my-dir", "a.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "my-dir", "path", "b.sh"), []byte("#!/bin/sh\n"), 0755))

	t.Chdir(dir)

	var s sink
	w := NewWriter(&s, Normal, false)
	for _, path := range []string{"my-dir", "my-dir/a.txt", "my-dir/path", "my-dir/path/b.sh"} {
		require.NoErrorf(t, w.Append(path), "Append(%s)", path)
	}
	require.NoError(t, w.Finish())
	assert.Equal(t, 1, s.finishes)

	hdrs, contents := readHeaders(t, s.Bytes())
	assert.Equal(t, []string{"my-dir/", "my-dir/a.txt", "my-dir/path/", "my-dir/path/b.sh"}, names(hdrs))
	assert.Equal(t, "hello", string(contents["my-dir/a.txt"]))
	assert.Equal(t, "#!/bin/sh\n", string(contents["my-dir/path/b.sh"]))
	assert.Equal(t, byte(tar.TypeDir), hdrs[0].Typeflag)
}

func TestWriter_LargeFile(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, 3<<20+17)
	_, _ = rand.New(rand.NewSource(1)).Read(data)
	name := filepath.Join(dir, "large.bin")
	require.NoError(t, os.WriteFile(name, data, 0644))

	var s sink
	w := NewWriter(&s, Minimal, false)
	require.NoError(t, w.Append(name))
	require.NoError(t, w.Finish())

	_, contents := readHeaders(t, s.Bytes())
	expectedName, _ := Name(name)
	assert.True(t, bytes.Equal(data, contents[expectedName]), "large file contents must round-trip")
}

func TestWriter_Minimal(t *testing.T) {
	dir := t.TempDir()
	exe, plain := filepath.Join(dir, "run.sh"), filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0700))
	require.NoError(t, os.WriteFile(plain, []byte("y"), 0600))
	require.NoError(t, os.Chtimes(plain, time.Now(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))

	var s sink
	w := NewWriter(&s, Minimal, false)
	require.NoError(t, w.Append(dir))
	require.NoError(t, w.Append(exe))
	require.NoError(t, w.Append(plain))
	require.NoError(t, w.Finish())

	hdrs, _ := readHeaders(t, s.Bytes())
	require.Len(t, hdrs, 3)

	for _, hdr := range hdrs {
		assert.Truef(t, DeterministicModTime.Equal(hdr.ModTime), "%s: ModTime = %v", hdr.Name, hdr.ModTime)
		assert.Zerof(t, hdr.Uid, "%s: Uid", hdr.Name)
		assert.Zerof(t, hdr.Gid, "%s: Gid", hdr.Name)
		assert.Emptyf(t, hdr.Uname, "%s: Uname", hdr.Name)
		assert.Emptyf(t, hdr.Gname, "%s: Gname", hdr.Name)
	}

	assert.Equal(t, int64(0o755), hdrs[0].Mode)
	if runtime.GOOS != "windows" {
		assert.Equal(t, int64(0o755), hdrs[1].Mode)
	}
	assert.Equal(t, int64(0o644), hdrs[2].Mode)
}

func TestWriter_Normal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "data.txt")
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.WriteFile(name, []byte("y"), 0640))
	require.NoError(t, os.Chtimes(name, mtime, mtime))

	var s sink
	w := NewWriter(&s, Normal, false)
	require.NoError(t, w.Append(name))
	require.NoError(t, w.Finish())

	hdrs, _ := readHeaders(t, s.Bytes())
	require.Len(t, hdrs, 1)
	assert.Truef(t, mtime.Equal(hdrs[0].ModTime), "ModTime = %v, want %v", hdrs[0].ModTime, mtime)
	if runtime.GOOS != "windows" {
		assert.Equal(t, int64(0o640), hdrs[0].Mode)
		assert.Equal(t, os.Getuid(), hdrs[0].Uid)
	}
}

func TestWriter_MinimalIsDeterministic(t *testing.T) {
	build := func(t *testing.T, mtime time.Time) []byte {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
		for _, name := range []string{"a.txt", "sub/b.txt"} {
			path := filepath.Join(dir, filepath.FromSlash(name))
			require.NoError(t, os.WriteFile(path, []byte(name), 0644))
			require.NoError(t, os.Chtimes(path, mtime, mtime))
		}

		t.Chdir(dir)

		var s sink
		w := NewWriter(&s, Minimal, false)
		for _, path := range []string{"a.txt", "sub", "sub/b.txt"} {
			require.NoError(t, w.Append(path))
		}
		require.NoError(t, w.Finish())
		return s.Bytes()
	}

	first := build(t, time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC))
	second := build(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	assert.True(t, bytes.Equal(first, second), "Minimal archives of equivalent trees must be byte-identical")
}

func TestWriter_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "target"), []byte("content"), 0644))
	require.NoError(t, os.Symlink("target", filepath.Join(dir, "link")))
	t.Chdir(dir)

	t.Run("not following", func(t *testing.T) {
		var s sink
		w := NewWriter(&s, Normal, false)
		require.NoError(t, w.Append("link"))
		require.NoError(t, w.Finish())

		hdrs, _ := readHeaders(t, s.Bytes())
		require.Len(t, hdrs, 1)
		assert.Equal(t, byte(tar.TypeSymlink), hdrs[0].Typeflag)
		assert.Equal(t, "target", hdrs[0].Linkname)
	})

	t.Run("following", func(t *testing.T) {
		var s sink
		w := NewWriter(&s, Normal, true)
		require.NoError(t, w.Append("link"))
		require.NoError(t, w.Finish())

		hdrs, contents := readHeaders(t, s.Bytes())
		require.Len(t, hdrs, 1)
		assert.Equal(t, byte(tar.TypeReg), hdrs[0].Typeflag)
		assert.Equal(t, "content", string(contents["link"]))
	})
}

func TestWriter_FinishEmpty(t *testing.T) {
	var s sink
	w := NewWriter(&s, Minimal, false)
	require.NoError(t, w.Finish())

	assert.Equalf(t, 1024, s.Len(), "empty tar archive is two zero blocks")
	hdrs, _ := readHeaders(t, s.Bytes())
	assert.Empty(t, hdrs)
}

func TestWriter_FinishTwice(t *testing.T) {
	var s sink
	w := NewWriter(&s, Minimal, false)
	require.NoError(t, w.Finish())
	n := s.Len()

	assert.ErrorIs(t, w.Finish(), ErrFinished)
	assert.Equalf(t, n, s.Len(), "second Finish must not write")
	assert.Equalf(t, 1, s.finishes, "sink must be finished exactly once")
	assert.ErrorIs(t, w.Append(t.TempDir()), ErrFinished)
}

func TestWriter_MissingFile(t *testing.T) {
	var s sink
	w := NewWriter(&s, Normal, false)
	assert.ErrorIs(t, w.Append(filepath.Join(t.TempDir(), "missing")), os.ErrNotExist)
}

func TestName(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "a/b.txt", want: "a/b.txt"},
		{path: "./a/b.txt", want: "a/b.txt"},
		{path: "a//b/", want: "a/b"},
		{path: "/abs/path", want: "abs/path"},
		{path: ".", want: ""},
		{path: "/", want: ""},
		{path: "a/../b", want: "b"},
		{path: "../escape", wantErr: true},
		{path: "a/../../escape", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Name(filepath.FromSlash(tt.path))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsafePath)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("minimal")
	assert.NoError(t, err)
	assert.Equal(t, Minimal, m)

	m, err = ParseMode("")
	assert.NoError(t, err)
	assert.Equal(t, Normal, m)

	_, err = ParseMode("complete")
	assert.Error(t, err)
}
