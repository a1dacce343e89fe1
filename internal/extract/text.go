// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"os"
	"path/filepath"

	"github.com/pdiddy/refminer/pkg/types"
)

// Text treats the whole file as one unit. Markup is not stripped.
type Text struct{}

// Extract implements Extractor.
func (Text) Extract(path string) ([]types.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []types.Unit{{Text: string(data), Label: filepath.Base(path)}}, nil
}
