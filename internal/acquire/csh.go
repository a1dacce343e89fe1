// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/refminer/internal/render"
	"github.com/pdiddy/refminer/pkg/types"
)

// biorxivResponse is the JSON shape of the bioRxiv details API.
type biorxivResponse struct {
	Collection []struct {
		JATSXML string `json:"jatsxml"`
	} `json:"collection"`
}

// coldSpringHarbor serves links hosted by Cold Spring Harbor. Preprints
// (recognised by bioRxiv response headers) are fetched as JATS XML through
// the bioRxiv API; journal articles are captured from the rendered page.
func (a *Acquirer) coldSpringHarbor(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	_, header, err := a.fetch(ctx, req.URL, nil)
	if err != nil {
		a.logger.Debug().Err(err).Str("url", req.URL).Msg("acquire: probing Cold Spring Harbor link")
	}
	if mentions(header, "biorxiv") {
		res.Source = "biorxiv"
		return a.biorxiv(ctx, req, res)
	}

	res.Source = "Cold Spring Harbor"
	res.URL = a.resolveRedirect(ctx, req.URL)
	dest := filepath.Join(req.OutDir, "document.html")
	if _, err := render.Capture(ctx, a.renderer, res.URL, dest); err != nil {
		return err
	}
	res.Path = dest
	res.Status = types.StatusSuccess
	return nil
}

// mentions reports whether any header name or value contains needle,
// case-insensitively.
func mentions(header map[string][]string, needle string) bool {
	for k, vs := range header {
		if strings.Contains(strings.ToLower(k), needle) {
			return true
		}
		for _, v := range vs {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
	}
	return false
}

func (a *Acquirer) biorxiv(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	res.URL = biorxivBase + req.DOI + "/na/json"
	body, _, err := a.fetch(ctx, res.URL, nil)
	if err != nil {
		res.Fail(reason(err))
		return nil
	}
	var resp biorxivResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("parsing bioRxiv response: %w", err)
	}
	if len(resp.Collection) == 0 || resp.Collection[0].JATSXML == "" {
		res.Fail("Collection was not found.")
		return nil
	}

	res.URL = resp.Collection[0].JATSXML
	dest := filepath.Join(req.OutDir, "document.xml")
	if _, err := a.download(ctx, res.URL, dest, nil); err != nil {
		res.Fail(reason(err))
		return nil
	}
	res.Path = dest
	res.Status = types.StatusSuccess
	return nil
}
