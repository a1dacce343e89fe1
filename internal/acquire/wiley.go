// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pdiddy/refminer/internal/render"
	"github.com/pdiddy/refminer/pkg/types"
)

// wiley downloads the article PDF through the Wiley TDM API. An empty or
// refused download falls back, if allowed, to capturing the page the
// article link redirects to.
func (a *Acquirer) wiley(ctx context.Context, req Request, res *types.AcquisitionResult) error {
	token, err := a.key(WileyKey)
	if err != nil {
		return err
	}
	res.URL = wileyBase + url.PathEscape(req.DOI)

	dest := filepath.Join(req.OutDir, "document.pdf")
	header := http.Header{}
	header.Set("Wiley-TDM-Client-Token", token)
	n, err := a.download(ctx, res.URL, dest, header)
	if err == nil && n > 0 {
		res.Path = dest
		res.Status = types.StatusSuccess
		return nil
	}
	if err != nil {
		a.logger.Debug().Err(err).Str("url", res.URL).Msg("acquire: Wiley TDM download")
	}
	os.Remove(dest)

	if !a.cfg.AllowDirect {
		res.Fail(NotAvailableAPI)
		return nil
	}

	res.URL = a.resolveRedirect(ctx, req.URL)
	page := filepath.Join(req.OutDir, "document.html")
	if _, err := render.Capture(ctx, a.renderer, res.URL, page); err != nil {
		return err
	}
	res.Path = page
	res.Status = types.StatusSuccess
	return nil
}
