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

// elsevier saves the full-text XML from the Elsevier article API and then
// every "standard" object (figures, supplements) it references.
func (a *Acquirer) elsevier(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	apiKey, err := a.key(ElsevierKey)
	if err != nil {
		return err
	}
	res.URL = elsevierBase + req.DOI

	q := url.Values{}
	q.Set("apiKey", apiKey)
	q.Set("view", "FULL")
	body, _, err := a.fetch(ctx, res.URL+"?"+q.Encode(), nil)
	if err != nil {
		res.Fail(reason(err))
		return nil
	}
	// The API reports some failures inside a 200 response.
	if bytes.Contains(body, []byte("service-error")) {
		res.Fail("service-error")
		return nil
	}

	dest := filepath.Join(req.OutDir, "document.xml")
	if err := os.WriteFile(dest, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	res.Path = dest

	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		res.Logf("parsing document: %v", err)
		res.Status = types.StatusSuccess
		return nil
	}
	for _, obj := range xmlquery.Find(doc, "//objects/object[@category='standard']") {
		ext := ExtFromMIME(obj.SelectAttr("mimetype"))
		out := filepath.Join(req.OutDir, baseName(obj.SelectAttr("ref"))+"."+ext)
		src := strings.TrimSpace(obj.InnerText()) + "&apikey=" + url.QueryEscape(apiKey)
		a.supplement(ctx, res, src, out)
	}
	res.Status = types.StatusSuccess
	return nil
}

// supplement downloads one supplemental file. A failure is logged on res
// and does not fail the strategy.
func (a *Acquirer) supplement(ctx context.Context, res *types.AcquisitionResult, src, dest string) {
	if _, err := a.download(ctx, src, dest, nil); err != nil {
		res.Logf("%s: %v", filepath.Base(dest), err)
		return
	}
	res.Supplements = append(res.Supplements, dest)
}
