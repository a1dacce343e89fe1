// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mining searches extracted text units for a regular expression and
// records every hit with a short context window, grouped by matched term and
// then by file.
package mining

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pdiddy/refminer/internal/archive"
	"github.com/pdiddy/refminer/internal/extract"
	"github.com/pdiddy/refminer/pkg/types"
)

// DefaultRadius is the number of characters of context kept on each side of
// a match.
const DefaultRadius = 6

// Mine records every non-overlapping leftmost-first match of re in text
// under c[term][label] with DefaultRadius characters of context. Text
// without a match leaves c unchanged.
func Mine(c types.Collector, re *regexp.Regexp, text, label string) {
	MineRadius(c, re, text, label, DefaultRadius)
}

// MineRadius is Mine with an explicit context radius.
func MineRadius(c types.Collector, re *regexp.Regexp, text, label string, radius int) {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		c.Add(text[start:end], label, Snippet(text, start, end, radius))
	}
}

// Snippet formats text[start:end] with up to radius characters on each side
// as "... <window> ...". The window is clamped to the string.
func Snippet(text string, start, end, radius int) string {
	lo := start
	for n := 0; n < radius && lo > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for n := 0; n < radius && hi < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return "... " + text[lo:hi] + " ..."
}

// Miner walks files and directories, extracting units and mining them.
type Miner struct {
	Extractors *extract.Registry
	Normalizer *archive.Normalizer
	Logger     zerolog.Logger

	// Radius is the context radius; zero uses DefaultRadius.
	Radius int
}

// New returns a Miner with the default extractors and the system archive
// tools.
func New(cfg types.MiningConfig, logger zerolog.Logger) *Miner {
	return &Miner{
		Extractors: extract.NewDefaultRegistry(cfg, logger),
		Normalizer: archive.New(logger),
		Logger:     logger,
		Radius:     cfg.ContextRadius,
	}
}

func (m *Miner) radius() int {
	if m.Radius > 0 {
		return m.Radius
	}
	return DefaultRadius
}

// MinePath compiles pattern and mines path, which may be a file or a
// directory. Only an invalid pattern or a missing path is an error; per-file
// failures are logged and skipped.
func (m *Miner) MinePath(ctx context.Context, c types.Collector, pattern, path string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return m.MineDir(ctx, c, re, path)
	}
	return m.MineFile(c, re, path)
}

// MineFile extracts the units of one file and mines them. Files of an
// unknown format are skipped without error.
func (m *Miner) MineFile(c types.Collector, re *regexp.Regexp, path string) error {
	units, err := m.Extractors.Extract(path)
	if err != nil {
		return err
	}
	for _, u := range units {
		MineRadius(c, re, u.Text, u.Label, m.radius())
	}
	return nil
}

// MineDir expands the archives of dir, then mines every non-empty file and
// recurses into subdirectories. The image directory written by the PDF
// extractor is not descended into when its structure file sits beside it. A
// file that fails is logged and the walk continues.
func (m *Miner) MineDir(ctx context.Context, c types.Collector, re *regexp.Regexp, dir string) error {
	if m.Normalizer != nil {
		report, err := m.Normalizer.Normalize(ctx, dir)
		if err != nil {
			return err
		}
		if report.Changed() {
			m.Logger.Debug().Str("dir", dir).Strs("expanded", report.Expanded).Msg("mining: archives expanded")
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	extracted := hasStructureFile(entries)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if extracted && entry.Name() == extract.ContentsDir {
				continue
			}
			if err := m.MineDir(ctx, c, re, path); err != nil {
				if ctx.Err() != nil {
					return err
				}
				m.Logger.Warn().Err(err).Str("dir", path).Msg("mining: directory skipped")
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			m.Logger.Warn().Err(err).Str("file", path).Msg("mining: stat failed")
			continue
		}
		if !info.Mode().IsRegular() || info.Size() == 0 {
			continue
		}
		if err := m.MineFile(c, re, path); err != nil {
			m.Logger.Warn().Err(err).Str("file", path).Msg("mining: file skipped")
		}
	}
	return nil
}

// hasStructureFile reports whether entries hold a PDF structure file, which
// marks a sibling contents directory as extractor output.
func hasStructureFile(entries []os.DirEntry) bool {
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), extract.StructureSuffix) {
			return true
		}
	}
	return false
}
