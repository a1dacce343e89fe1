// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mining

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refminer/internal/extract"
	"github.com/pdiddy/refminer/pkg/types"
)

func TestMine(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		want    types.Collector
	}{
		{
			name:    "match at start clamps left edge",
			pattern: "ABC",
			text:    "ABCDEF",
			want:    types.Collector{"ABC": {"f.txt": {"... ABCDEF ..."}}},
		},
		{
			name:    "match at end clamps right edge",
			pattern: "XYZ",
			text:    "0123456789XYZ",
			want:    types.Collector{"XYZ": {"f.txt": {"... 456789XYZ ..."}}},
		},
		{
			name:    "radius six on both sides",
			pattern: "p53",
			text:    "the tumour p53 protein level",
			want:    types.Collector{"p53": {"f.txt": {"... umour p53 prote ..."}}},
		},
		{
			name:    "distinct terms and repeats",
			pattern: `BRCA[12]`,
			text:    "BRCA1 and BRCA2 and BRCA1",
			want: types.Collector{
				"BRCA1": {"f.txt": {"... BRCA1 and B ...", "... 2 and BRCA1 ..."}},
				"BRCA2": {"f.txt": {"... 1 and BRCA2 and B ..."}},
			},
		},
		{
			name:    "multi-byte characters are not split",
			pattern: "x",
			text:    "ééééx",
			want:    types.Collector{"x": {"f.txt": {"... ééééx ..."}}},
		},
		{
			name:    "radius counts characters not bytes",
			pattern: "TP53",
			text:    "αβγδεζηθ TP53 μM dose",
			want:    types.Collector{"TP53": {"f.txt": {"... δεζηθ TP53 μM do ..."}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := types.Collector{}
			Mine(c, regexp.MustCompile(tt.pattern), tt.text, "f.txt")
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestMineNoMatchLeavesCollectorUnchanged(t *testing.T) {
	c := types.Collector{"ABC": {"a.txt": {"... ABC ..."}}}
	before := types.Collector{"ABC": {"a.txt": {"... ABC ..."}}}

	for _, pattern := range []string{"zzz", `\d{5}`, "^$x"} {
		Mine(c, regexp.MustCompile(pattern), "nothing to see here", "b.txt")
	}
	assert.Equal(t, before, c)
}

func TestMineAppendsAcrossCalls(t *testing.T) {
	c := types.Collector{}
	re := regexp.MustCompile("KRAS")
	Mine(c, re, "KRAS", "a.txt")
	Mine(c, re, "KRAS", "a.txt")
	Mine(c, re, "KRAS", "b.txt")

	assert.Equal(t, []string{"... KRAS ...", "... KRAS ..."}, c["KRAS"]["a.txt"])
	assert.Len(t, c["KRAS"]["b.txt"], 1)
	assert.Equal(t, 3, c.Count())
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "... abc ...", Snippet("abc", 0, 3, 6))
	assert.Equal(t, "... b ...", Snippet("abc", 1, 2, 0))
	assert.Equal(t, "... abcdefghi ...", Snippet("abcdefghijk", 3, 5, 4))
	assert.Equal(t, "... ΩxΩ ...", Snippet("ΩΩxΩΩ", 4, 5, 1))
}

func TestMinePathTarGz(t *testing.T) {
	if _, err := exec.LookPath("tar"); err != nil {
		t.Skip("tar not on PATH")
	}
	dir := t.TempDir()
	writeTarGz(t, filepath.Join(dir, "PMC7012345.tar.gz"), "results.txt", "we observed IL6 induction")

	var logs bytes.Buffer
	m := New(types.MiningConfig{}, zerolog.New(&logs))
	c := types.Collector{}
	require.NoError(t, m.MinePath(context.Background(), c, "IL6", dir))

	assert.NoFileExists(t, filepath.Join(dir, "PMC7012345.tar.gz"))
	assert.Equal(t, types.Collector{"IL6": {"results.txt": {"... erved IL6 induc ..."}}}, c)
	assert.Contains(t, logs.String(), "mining: archives expanded")
}

func TestMineDirWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "document.xml", "<p>CD4 T cells</p>")
	writeFile(t, dir, "empty.txt", "")
	writeFile(t, dir, "figure.png", "CD4 in binary")
	writeFile(t, dir, "broken.docx", "not a zip archive, CD4")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "supp", extract.ContentsDir), 0o755))
	writeFile(t, filepath.Join(dir, "supp"), "table.txt", "CD4 count")
	writeFile(t, filepath.Join(dir, "supp", extract.ContentsDir), "1_1.txt", "CD4 ignored")
	writeFile(t, filepath.Join(dir, "supp"), "article"+extract.StructureSuffix, "[]")

	var logs bytes.Buffer
	m := New(types.MiningConfig{}, zerolog.New(&logs))
	c := types.Collector{}
	require.NoError(t, m.MinePath(context.Background(), c, "CD4", dir))

	assert.Equal(t, types.Collector{"CD4": {
		"document.xml": {"... <p>CD4 T cel ..."},
		"table.txt":    {"... CD4 count ..."},
	}}, c)
	assert.Contains(t, logs.String(), "broken.docx")
	assert.Contains(t, logs.String(), "mining: file skipped")
}

func TestMineDirContentsWithoutStructure(t *testing.T) {
	tests := []struct {
		name      string
		structure bool
		want      types.Collector
	}{
		{
			name: "plain directory named contents is mined",
			want: types.Collector{"MYC": {"notes.txt": {"... MYC ampli ..."}}},
		},
		{
			name:      "image directory beside a structure file is skipped",
			structure: true,
			want:      types.Collector{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(dir, extract.ContentsDir), 0o755))
			writeFile(t, filepath.Join(dir, extract.ContentsDir), "notes.txt", "MYC amplification")
			if tt.structure {
				writeFile(t, dir, "paper"+extract.StructureSuffix, "[]")
			}

			c := types.Collector{}
			m := New(types.MiningConfig{}, zerolog.Nop())
			require.NoError(t, m.MinePath(context.Background(), c, "MYC", dir))
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestMinePathSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "EGFR")

	c := types.Collector{}
	m := New(types.MiningConfig{}, zerolog.Nop())
	require.NoError(t, m.MinePath(context.Background(), c, "EGFR", filepath.Join(dir, "notes.txt")))
	assert.Equal(t, types.Collector{"EGFR": {"notes.txt": {"... EGFR ..."}}}, c)
}

func TestMinePathCustomRadius(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "123EGFR456")

	c := types.Collector{}
	m := New(types.MiningConfig{ContextRadius: 1}, zerolog.Nop())
	require.NoError(t, m.MinePath(context.Background(), c, "EGFR", dir))
	assert.Equal(t, []string{"... 3EGFR4 ..."}, c["EGFR"]["notes.txt"])
}

func TestMinePathErrors(t *testing.T) {
	m := New(types.MiningConfig{}, zerolog.Nop())

	err := m.MinePath(context.Background(), types.Collector{}, "([", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling pattern")

	err = m.MinePath(context.Background(), types.Collector{}, "x", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeTarGz(t *testing.T, path, name, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := gzip.NewWriter(f)
	tw := tar.NewWriter(zw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}))
	_, err = tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
}
