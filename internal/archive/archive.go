// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive expands compressed containers in place so later stages
// only see plain files. Expansion shells out to tar, gunzip and unzip; a
// failed expansion is logged and the original file is left untouched.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Kind is a recognised compressed container.
type Kind int

const (
	KindNone Kind = iota
	KindTarGz
	KindGzip
	KindZip
)

func (k Kind) String() string {
	switch k {
	case KindTarGz:
		return "tar.gz"
	case KindGzip:
		return "gz"
	case KindZip:
		return "zip"
	}
	return "none"
}

// Detect classifies a file name by suffix. ".tar.gz" is checked before
// ".gz".
func Detect(name string) Kind {
	switch {
	case strings.HasSuffix(name, ".tar.gz"):
		return KindTarGz
	case strings.HasSuffix(name, ".gz"):
		return KindGzip
	case strings.HasSuffix(name, ".zip"):
		return KindZip
	}
	return KindNone
}

// command returns the program and arguments that expand file into dir.
// tar runs with dir as its working directory.
func command(k Kind, file, dir string) (string, []string) {
	switch k {
	case KindTarGz:
		return "tar", []string{"-xzf", file}
	case KindGzip:
		return "gunzip", []string{"-f", file}
	case KindZip:
		return "unzip", []string{"-o", file, "-d", dir}
	}
	return "", nil
}

// executor abstracts command execution for testing.
type executor interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec. Failures carry
// the command's trimmed stderr.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Report lists what a Normalize call did. Paths are absolute.
type Report struct {
	Expanded []string
	Failed   []string
}

// Changed reports whether anything was expanded.
func (r Report) Changed() bool {
	return len(r.Expanded) > 0
}

// Normalizer expands the compressed files of one directory level.
type Normalizer struct {
	logger zerolog.Logger
	exec   executor
}

// New returns a Normalizer that runs the system's tar, gunzip and unzip.
func New(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger, exec: osExecutor{}}
}

// Normalize expands every compressed file directly inside dir. On success
// the original is removed if it still exists (gunzip already replaces it);
// on failure a warning is logged and the file is kept. Only a dir that
// cannot be listed is an error.
//
// Running Normalize on an expanded directory finds nothing to do.
func (n *Normalizer) Normalize(ctx context.Context, dir string) (Report, error) {
	var report Report

	abs, err := filepath.Abs(dir)
	if err != nil {
		return report, fmt.Errorf("resolving %s: %w", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return report, fmt.Errorf("listing %s: %w", abs, err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		kind := Detect(entry.Name())
		if kind == KindNone {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		file := filepath.Join(abs, entry.Name())
		name, args := command(kind, file, abs)
		if err := n.exec.Run(ctx, abs, name, args...); err != nil {
			n.logger.Warn().Err(err).Str("file", file).Stringer("kind", kind).Msg("archive: expansion failed, keeping original")
			report.Failed = append(report.Failed, file)
			continue
		}

		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			n.logger.Warn().Err(err).Str("file", file).Msg("archive: removing expanded original")
		}
		n.logger.Debug().Str("file", file).Stringer("kind", kind).Msg("archive: expanded")
		report.Expanded = append(report.Expanded, file)
	}
	return report, nil
}
