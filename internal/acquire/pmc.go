// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/refminer/pkg/types"
)

// idconvResponse is the JSON shape of the NCBI ID conversion service.
type idconvResponse struct {
	Records []struct {
		PMCID string `json:"pmcid"`
	} `json:"records"`
}

// repository downloads the PubMed Central OA package of the article.
func (a *Acquirer) repository(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	pmcid, err := a.pmcID(ctx, req.RefID)
	if err != nil {
		return err
	}
	if pmcid == "" {
		res.Fail("PMC ID was not found.")
		return nil
	}
	res.Accession = pmcid

	link, err := a.pmcPackageLink(ctx, pmcid)
	if err != nil {
		return err
	}
	if link == "" {
		res.Fail("PMC package link was not found.")
		return nil
	}
	res.URL = link

	dest := filepath.Join(req.OutDir, baseName(link))
	if _, err := a.download(ctx, link, dest, nil); err != nil {
		res.Fail(reason(err))
		return nil
	}
	res.Path = dest
	res.Status = types.StatusSuccess
	return nil
}

// pmcID resolves the PMC accession of a PubMed id, without the "PMC"
// prefix. An unknown article yields "".
func (a *Acquirer) pmcID(ctx context.Context, refID string) (string, error) {
	q := url.Values{}
	q.Set("tool", toolName)
	if a.cfg.Email != "" {
		q.Set("email", a.cfg.Email)
	}
	q.Set("ids", refID)
	q.Set("format", "json")

	body, _, err := a.fetch(ctx, idconvBase+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("PMC ID lookup: %w", err)
	}
	var resp idconvResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing PMC ID response: %w", err)
	}
	if len(resp.Records) == 0 {
		return "", nil
	}
	return strings.TrimPrefix(resp.Records[0].PMCID, "PMC"), nil
}

// pmcPackageLink asks the OA service for the tgz package of a PMC article.
// NCBI publishes ftp:// links; they are served over https as well.
func (a *Acquirer) pmcPackageLink(ctx context.Context, pmcid string) (string, error) {
	body, _, err := a.fetch(ctx, oaBase+"?"+url.Values{"id": {"PMC" + pmcid}}.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("PMC OA lookup: %w", err)
	}
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing PMC OA response: %w", err)
	}
	node := xmlquery.FindOne(doc, "//link[@format='tgz']")
	if node == nil {
		return "", nil
	}
	href := node.SelectAttr("href")
	if rest, ok := strings.CutPrefix(href, "ftp://"); ok {
		href = "https://" + rest
	}
	return href, nil
}
