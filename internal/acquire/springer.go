// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/refminer/internal/render"
	"github.com/pdiddy/refminer/pkg/types"
)

// NotAvailableAPI is the failure message of API-only strategies when the
// publisher API has no content and direct capture is not allowed.
const NotAvailableAPI = "Not available API."

// springer saves the JATS record from the Springer Nature open access API
// with its supplementary media. When the API has no record it falls back,
// if allowed, to capturing the landing page and its supplementary links.
func (a *Acquirer) springer(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	apiKey, err := a.key(SpringerKey)
	if err != nil {
		return err
	}
	res.URL = springerBase

	q := url.Values{}
	q.Set("q", "doi:"+req.DOI)
	q.Set("api_key", apiKey)
	body, _, err := a.fetch(ctx, springerBase+"?"+q.Encode(), nil)
	if err != nil {
		res.Fail(reason(err))
		return nil
	}

	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parsing Springer response: %w", err)
	}
	total := 0
	if node := xmlquery.FindOne(doc, "//result/total"); node != nil {
		total, _ = strconv.Atoi(strings.TrimSpace(node.InnerText()))
	} else if node := xmlquery.FindOne(doc, "//total"); node != nil {
		total, _ = strconv.Atoi(strings.TrimSpace(node.InnerText()))
	}

	switch {
	case total > 0:
		dest := filepath.Join(req.OutDir, "document.xml")
		if err := os.WriteFile(dest, body, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		res.Path = dest

		prefix := springerESMBase + "art%3A" + strings.ReplaceAll(req.DOI, "/", "%2F") + "/"
		for _, media := range xmlquery.Find(doc, "//supplementary-material/media") {
			href := media.SelectAttr("xlink:href")
			if href == "" {
				continue
			}
			a.supplement(ctx, res, prefix+href, filepath.Join(req.OutDir, baseName(href)))
		}
		res.Status = types.StatusSuccess
		return nil

	case a.cfg.AllowDirect:
		return a.springerDirect(ctx, req, res)

	default:
		res.Fail(NotAvailableAPI)
		return nil
	}
}

func (a *Acquirer) springerDirect(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	res.URL = req.URL
	dest := filepath.Join(req.OutDir, "document.html")
	html, err := render.Capture(ctx, a.renderer, req.URL, dest)
	if err != nil {
		return err
	}
	res.Path = dest
	res.Status = types.StatusSuccess

	page, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		res.Logf("parsing landing page: %v", err)
		return nil
	}
	page.Find("a[data-test='supp-info-link']").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if !strings.HasPrefix(href, "https://") {
			return
		}
		a.supplement(ctx, res, href, filepath.Join(req.OutDir, baseName(href)))
	})
	return nil
}
