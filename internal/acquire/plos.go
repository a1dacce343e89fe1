// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/refminer/pkg/types"
)

// plos saves the manuscript XML served by PLOS and the supplementary
// material listed in its body.
func (a *Acquirer) plos(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	q := url.Values{}
	q.Set("id", req.DOI)
	q.Set("type", "manuscript")
	res.URL = plosBase + "?" + q.Encode()

	body, _, err := a.fetch(ctx, res.URL, nil)
	if err != nil {
		res.Fail(reason(err))
		return nil
	}
	dest := filepath.Join(req.OutDir, "document.xml")
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	res.Path = dest

	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil || xmlquery.FindOne(doc, "//body") == nil {
		res.Fail("Not available.")
		return nil
	}

	for _, sm := range xmlquery.Find(doc, "//body//sec[@sec-type='supplementary-material']//supplementary-material") {
		id := sm.SelectAttr("id")
		href := sm.SelectAttr("xlink:href")
		if id == "" || href == "" {
			continue
		}
		ext := ExtFromMIME(sm.SelectAttr("mimetype"))
		src := doiResolverBase + strings.TrimPrefix(href, "info:doi/")
		a.supplement(ctx, res, src, filepath.Join(req.OutDir, id+"."+ext))
	}
	res.Status = types.StatusSuccess
	return nil
}
