// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns documents into independently searchable text units.
// Format detection is by file suffix; each format has an Extractor, and a
// Registry maps formats to extractors so new formats plug in without
// touching the code that consumes units.
package extract

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pdiddy/refminer/pkg/types"
)

// Format tags a file by how its text is extracted.
type Format int

const (
	FormatUnknown Format = iota
	FormatText
	FormatPDF
	FormatDocx
	FormatXlsx
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatPDF:
		return "pdf"
	case FormatDocx:
		return "docx"
	case FormatXlsx:
		return "xlsx"
	}
	return "unknown"
}

// suffixes maps file extensions to formats. Matching is case-sensitive;
// only the PDF extension is recognised in both cases.
var suffixes = map[string]Format{
	".htm":  FormatText,
	".html": FormatText,
	".xml":  FormatText,
	".txt":  FormatText,
	".pdf":  FormatPDF,
	".PDF":  FormatPDF,
	".docx": FormatDocx,
	".xlsx": FormatXlsx,
}

// Detect returns the format of path by its extension.
func Detect(path string) Format {
	return suffixes[filepath.Ext(path)]
}

// Extractor yields the text units of one file. Units are labelled with the
// file's base name.
type Extractor interface {
	Extract(path string) ([]types.Unit, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) ([]types.Unit, error)

// Extract calls f.
func (f ExtractorFunc) Extract(path string) ([]types.Unit, error) {
	return f(path)
}

// Registry dispatches files to the extractor registered for their format.
type Registry struct {
	extractors map[Format]Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[Format]Extractor)}
}

// NewDefaultRegistry registers the text, PDF, docx and xlsx extractors.
func NewDefaultRegistry(cfg types.MiningConfig, logger zerolog.Logger) *Registry {
	r := NewRegistry()
	r.Register(FormatText, Text{})
	r.Register(FormatPDF, &PDF{Logger: logger})
	r.Register(FormatDocx, Docx{})
	r.Register(FormatXlsx, Xlsx{MaxBytes: cfg.MaxSpreadsheetBytes, Logger: logger})
	return r
}

// Register sets the extractor for f, replacing any previous one.
func (r *Registry) Register(f Format, e Extractor) {
	r.extractors[f] = e
}

// Lookup returns the extractor for f.
func (r *Registry) Lookup(f Format) (Extractor, bool) {
	e, ok := r.extractors[f]
	return e, ok
}

// Extract detects the format of path and runs its extractor. Files of an
// unknown or unregistered format yield no units and no error.
func (r *Registry) Extract(path string) ([]types.Unit, error) {
	f := Detect(path)
	e, ok := r.Lookup(f)
	if !ok {
		return nil, nil
	}
	units, err := e.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s %s: %w", f, filepath.Base(path), err)
	}
	return units, nil
}
