// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and fails the commands whose program is listed
// in fail.
type mockExecutor struct {
	calls []string
	fail  map[string]bool
	// onRun simulates the command's effect on disk.
	onRun func(dir, name string, args []string)
}

func (m *mockExecutor) Run(_ context.Context, dir, name string, args ...string) error {
	m.calls = append(m.calls, name+" "+strings.Join(args, " "))
	if m.fail[name] {
		return errors.New(name + ": exit status 2: corrupt input")
	}
	if m.onRun != nil {
		m.onRun(dir, name, args)
	}
	return nil
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"pmc.tar.gz", KindTarGz},
		{"table.csv.gz", KindGzip},
		{"supp.zip", KindZip},
		{"article.pdf", KindNone},
		{"archive.tgz", KindNone},
		{"ZIP.ZIP", KindNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.name))
		})
	}
}

func TestNormalizeCommands(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.tar.gz", "b.gz", "c.zip", "d.txt"} {
		writeFile(t, dir, name, "x")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.zip"), 0o755))

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)

	m := &mockExecutor{}
	n := &Normalizer{logger: zerolog.Nop(), exec: m}
	report, err := n.Normalize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"tar -xzf " + filepath.Join(abs, "a.tar.gz"),
		"gunzip -f " + filepath.Join(abs, "b.gz"),
		"unzip -o " + filepath.Join(abs, "c.zip") + " -d " + abs,
	}, m.calls)
	assert.Len(t, report.Expanded, 3)
	assert.Empty(t, report.Failed)

	for _, name := range []string{"a.tar.gz", "b.gz", "c.zip"} {
		assert.NoFileExists(t, filepath.Join(dir, name))
	}
	assert.FileExists(t, filepath.Join(dir, "d.txt"))
	assert.DirExists(t, filepath.Join(dir, "nested.zip"))
}

func TestNormalizeFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.zip", "not a zip")
	writeFile(t, dir, "good.tar.gz", "x")

	m := &mockExecutor{fail: map[string]bool{"unzip": true}}
	n := &Normalizer{logger: zerolog.Nop(), exec: m}
	report, err := n.Normalize(context.Background(), dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "broken.zip"))
	assert.NoFileExists(t, filepath.Join(dir, "good.tar.gz"))
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "broken.zip", filepath.Base(report.Failed[0]))
	require.Len(t, report.Expanded, 1)
	assert.True(t, report.Changed())
}

func TestNormalizeOriginalAlreadyGone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.csv.gz", "x")

	// gunzip replaces the original itself.
	m := &mockExecutor{onRun: func(dir, _ string, args []string) {
		gz := args[len(args)-1]
		require.NoError(t, os.Rename(gz, strings.TrimSuffix(gz, ".gz")))
	}}
	n := &Normalizer{logger: zerolog.Nop(), exec: m}
	report, err := n.Normalize(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, report.Expanded, 1)
	assert.FileExists(t, filepath.Join(dir, "data.csv"))
}

func TestNormalizeMissingDir(t *testing.T) {
	n := &Normalizer{logger: zerolog.Nop(), exec: &mockExecutor{}}
	_, err := n.Normalize(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNormalizeTarGzIdempotent(t *testing.T) {
	if _, err := exec.LookPath("tar"); err != nil {
		t.Skip("tar not on PATH")
	}
	dir := t.TempDir()
	writeTarGz(t, filepath.Join(dir, "PMC123.tar.gz"), map[string]string{"notes.txt": "the kinase was active"})

	n := New(zerolog.Nop())
	first, err := n.Normalize(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, first.Expanded, 1)
	assert.NoFileExists(t, filepath.Join(dir, "PMC123.tar.gz"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	before := listDir(t, dir)
	second, err := n.Normalize(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, second.Changed())
	assert.Empty(t, second.Failed)
	assert.Equal(t, before, listDir(t, dir))
}

func TestNormalizeGunzip(t *testing.T) {
	if _, err := exec.LookPath("gunzip"); err != nil {
		t.Skip("gunzip not on PATH")
	}
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "table.txt.gz"))
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("row one"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	report, err := New(zerolog.Nop()).Normalize(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, report.Expanded, 1)

	data, err := os.ReadFile(filepath.Join(dir, "table.txt"))
	require.NoError(t, err)
	assert.Equal(t, "row one", string(data))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := gzip.NewWriter(f)
	tw := tar.NewWriter(zw)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}
