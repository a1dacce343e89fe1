// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publisher reads the full-text link list of a PubMed article page
// and classifies each provider label into a publisher family.
package publisher

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/refminer/pkg/types"
)

// linkListSelector locates the anchors of the full-text outbound link list.
const linkListSelector = "div.full-text-links-list a"

// ParseLinks extracts the full-text links from a rendered PubMed article
// page. A page without the link list yields empty Links and a nil error.
//
// The label of each anchor is the part of its title after the first " at "
// ("Free full text at PubMed Central" -> "PubMed Central"), or the whole
// title when it has no such part. Anchors without a title fall back to
// their text; anchors with neither are skipped. The first anchor wins when
// two share a label.
func ParseLinks(r io.Reader) (types.Links, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing article page: %w", err)
	}

	links := types.Links{}
	doc.Find(linkListSelector).Each(func(_ int, a *goquery.Selection) {
		label := Label(a.AttrOr("title", ""))
		if label == "" {
			label = strings.TrimSpace(a.Text())
		}
		if label == "" {
			return
		}
		links.Add(label, strings.TrimSpace(a.AttrOr("href", "")))
	})
	return links, nil
}

// Label derives a provider label from an anchor title.
func Label(title string) string {
	title = strings.TrimSpace(title)
	if _, after, ok := strings.Cut(title, " at "); ok {
		return strings.TrimSpace(after)
	}
	return title
}
