// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"path/filepath"

	"github.com/pdiddy/refminer/internal/render"
	"github.com/pdiddy/refminer/pkg/types"
)

// generic captures the rendered page of any provider without a dedicated
// strategy.
func (a *Acquirer) generic(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	res.URL = req.URL
	dest := filepath.Join(req.OutDir, "document.html")
	if _, err := render.Capture(ctx, a.renderer, req.URL, dest); err != nil {
		return err
	}
	res.Path = dest
	res.Status = types.StatusSuccess
	return nil
}
