// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/refminer/pkg/types"
)

// Xlsx yields every non-empty cell of every worksheet as a unit.
type Xlsx struct {
	// MaxBytes skips larger workbooks entirely. Zero uses
	// types.DefaultMaxSpreadsheetBytes.
	MaxBytes int64
	Logger   zerolog.Logger
}

// Extract implements Extractor. A workbook over the size ceiling yields no
// units and no error.
func (x Xlsx) Extract(path string) ([]types.Unit, error) {
	limit := x.MaxBytes
	if limit <= 0 {
		limit = types.DefaultMaxSpreadsheetBytes
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > limit {
		x.Logger.Debug().Str("file", path).Int64("size", info.Size()).Int64("limit", limit).Msg("extract: workbook over size ceiling, skipped")
		return nil, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	label := filepath.Base(path)
	var units []types.Unit
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			for _, cell := range row {
				if cell == "" {
					continue
				}
				units = append(units, types.Unit{Text: cell, Label: label})
			}
		}
	}
	return units, nil
}
