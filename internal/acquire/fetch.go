// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/refminer/internal/httputil"
)

// newRequest builds a GET request carrying the configured User-Agent and
// any extra headers.
func (a *Acquirer) newRequest(ctx context.Context, rawURL string, header http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if a.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", a.cfg.UserAgent)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// fetch issues a single GET (429 responses are retried with backoff) and
// returns the body and response headers of a 2xx response. Any other status
// is a *httputil.StatusError.
func (a *Acquirer) fetch(ctx context.Context, rawURL string, header http.Header) ([]byte, http.Header, error) {
	req, err := a.newRequest(ctx, rawURL, header)
	if err != nil {
		return nil, nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, a.client, req, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.Header, &httputil.StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: rawURL}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.Header, fmt.Errorf("reading body: %w", err)
	}
	return body, resp.Header, nil
}

// download fetches rawURL to destPath through a temporary file renamed on
// success, and returns the number of bytes written. A non-2xx response
// writes nothing.
func (a *Acquirer) download(ctx context.Context, rawURL, destPath string, header http.Header) (int64, error) {
	req, err := a.newRequest(ctx, rawURL, header)
	if err != nil {
		return 0, err
	}
	resp, err := httputil.DoWithRetry(ctx, a.client, req, 0)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if !httputil.IsSuccess(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		return 0, &httputil.StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: rawURL}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

// resolveRedirect returns the target named in the Link header of rawURL's
// response: the text from the first "http" up to the following ">". Without
// a Link header, or when the request fails, rawURL is returned unchanged.
func (a *Acquirer) resolveRedirect(ctx context.Context, rawURL string) string {
	req, err := a.newRequest(ctx, rawURL, nil)
	if err != nil {
		return rawURL
	}
	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Debug().Err(err).Str("url", rawURL).Msg("acquire: redirect check failed")
		return rawURL
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return linkTarget(resp.Header.Get("Link"), rawURL)
}

func linkTarget(link, fallback string) string {
	if link == "" {
		return fallback
	}
	beg := strings.Index(link, "http")
	if beg < 0 {
		return link
	}
	if end := strings.Index(link[beg+1:], ">"); end >= 0 {
		return link[beg : beg+1+end]
	}
	return link[beg:]
}

// reason renders err as a result message. HTTP status failures become their
// status text ("Not Found").
func reason(err error) string {
	var se *httputil.StatusError
	if errors.As(err, &se) {
		return se.Reason()
	}
	return err.Error()
}

// baseName returns the last path element of a URL or path, ignoring any
// query string.
func baseName(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	}
	return path.Base(ref)
}

// key resolves a publisher credential.
func (a *Acquirer) key(name string) (string, error) {
	v, err := a.secrets.Lookup(name)
	if err != nil {
		return "", fmt.Errorf("%s is not configured: %w", name, err)
	}
	return v, nil
}
