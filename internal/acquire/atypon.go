// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/refminer/internal/render"
	"github.com/pdiddy/refminer/pkg/types"
)

// atypon captures the article page of an Atypon-hosted journal. PNAS pages
// additionally yield the article PDF and Science pages their supplementary
// downloads.
func (a *Acquirer) atypon(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	pageURL := normalizeAtyponURL(req.URL)
	res.URL = pageURL

	dest := filepath.Join(req.OutDir, "document.html")
	html, err := render.Capture(ctx, a.renderer, pageURL, dest)
	if err != nil {
		return err
	}
	res.Path = dest
	res.Status = types.StatusSuccess

	switch {
	case strings.Contains(hostOf(pageURL), "pnas.org"):
		res.Source = "PNAS"
		return a.pnasPDF(ctx, req, res, pageURL, html)
	case strings.Contains(pageURL, "www.science.org"):
		res.Source = "science"
		return a.scienceSupplements(ctx, req, res, html)
	}
	return nil
}

func normalizeAtyponURL(u string) string {
	u = strings.ReplaceAll(u, " ", "%20")
	return strings.ReplaceAll(u, "///", "//")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// pnasPDF follows the "View PDF" link, rewritten from the reader view to
// the download endpoint.
func (a *Acquirer) pnasPDF(ctx context.Context, req Request, res *types.AcquisitionResult, pageURL, html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		res.Logf("parsing page: %v", err)
		return nil
	}
	href, ok := doc.Find("a[aria-label='View PDF']").First().Attr("href")
	if !ok || href == "" {
		return nil
	}
	href = strings.Replace(href, "/epdf/", "/pdf/", 1) + "?download=true"

	base, err := url.Parse(pageURL)
	if err != nil {
		res.Logf("resolving %s: %v", href, err)
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		res.Logf("resolving %s: %v", href, err)
		return nil
	}
	pdfURL := base.ResolveReference(ref).String()

	dest := filepath.Join(req.OutDir, "document.pdf")
	if _, err := a.download(ctx, pdfURL, dest, nil); err != nil {
		res.Logf("document.pdf: %v", err)
		return nil
	}
	res.URL = pdfURL
	res.Path = dest
	return nil
}

// scienceSupplements downloads every "Download" anchor of the
// supplementary materials section.
func (a *Acquirer) scienceSupplements(ctx context.Context, req Request, res *types.AcquisitionResult, html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		res.Logf("parsing page: %v", err)
		return nil
	}
	doc.Find("#supplementary-materials a").Each(func(_ int, s *goquery.Selection) {
		if s.Text() != "Download" {
			return
		}
		href := s.AttrOr("href", "")
		if href == "" {
			return
		}
		a.supplement(ctx, res, scienceOrigin+href, filepath.Join(req.OutDir, baseName(href)))
	})
	return nil
}
