// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire fetches the full text of PubMed articles. For each article
// it reads the full-text links of the PubMed page, tries PubMed Central
// first, then each publisher in page order through a per-family strategy,
// and stops at the first success.
package acquire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refminer/internal/httputil"
	"github.com/pdiddy/refminer/internal/publisher"
	"github.com/pdiddy/refminer/internal/render"
	"github.com/pdiddy/refminer/internal/secrets"
	"github.com/pdiddy/refminer/pkg/types"
)

// NoLinksMessage is the failure message for an article page without
// full-text links.
const NoLinksMessage = "Full text is not available in this institution."

// ResultFile is written into the article directory after a successful
// acquisition.
const ResultFile = "result.yaml"

// Article identifies one acquisition target.
type Article struct {
	RefID string `json:"refid" yaml:"refid"`
	// DOI may be bare or carry PubMed's "doi: " prefix.
	DOI string `json:"doi" yaml:"doi"`
}

// Acquirer runs acquisitions. It is not safe for concurrent use on the same
// article.
type Acquirer struct {
	cfg      types.AcquisitionConfig
	client   *http.Client
	renderer render.Renderer
	secrets  secrets.Resolver
	logger   zerolog.Logger
	out      io.Writer
	table    []route
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option { return func(a *Acquirer) { a.client = c } }

// WithRenderer sets the page renderer.
func WithRenderer(r render.Renderer) Option { return func(a *Acquirer) { a.renderer = r } }

// WithSecrets sets the credential resolver.
func WithSecrets(r secrets.Resolver) Option { return func(a *Acquirer) { a.secrets = r } }

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option { return func(a *Acquirer) { a.logger = l } }

// WithOutput sets the writer for progress lines.
func WithOutput(w io.Writer) Option { return func(a *Acquirer) { a.out = w } }

// New creates an Acquirer. Without options it uses an HTTP client with the
// configured timeout, a rod renderer, credentials from the environment, no
// logging and no progress output.
func New(cfg types.AcquisitionConfig, opts ...Option) *Acquirer {
	a := &Acquirer{
		cfg:     cfg,
		logger:  zerolog.Nop(),
		out:     io.Discard,
		secrets: secrets.Env{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = &http.Client{Timeout: cfg.Timeout}
	}
	if a.renderer == nil {
		a.renderer = render.NewRodRenderer(cfg.Browser, a.logger)
	}
	a.table = a.routes()
	return a
}

// FullText acquires one article into <Dest>/<RefID>/. It never panics; every
// fault ends up as a failure result.
func (a *Acquirer) FullText(ctx context.Context, art Article) (res types.AcquisitionResult) {
	res = types.AcquisitionResult{RefID: art.RefID, Status: types.StatusUnknown}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Str("refid", art.RefID).Msg("acquire: panic")
			res.Fail(fmt.Sprintf("panic: %v", r))
		}
	}()

	outDir := filepath.Join(a.cfg.Dest, art.RefID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		res.Fail(fmt.Sprintf("creating directory %s: %v", outDir, err))
		return res
	}

	links, err := a.links(ctx, art.RefID)
	if err != nil {
		res.Fail(err.Error())
		return res
	}
	res.Links = links
	a.logger.Debug().Str("refid", art.RefID).Strs("labels", links.Labels()).Msg("acquire: links found")
	if len(links) == 0 {
		res.Fail(NoLinksMessage)
		return res
	}
	if a.cfg.Verbose {
		fmt.Fprintln(a.out, "Full-text links:")
		for _, l := range links {
			fmt.Fprintf(a.out, " > %s : %s\n", l.Label, l.Target)
		}
	}

	doi := BareDOI(art.DOI)
	request := func(l types.PublisherLink) Request {
		return Request{RefID: art.RefID, DOI: doi, Label: l.Label, URL: l.Target, OutDir: outDir}
	}

	for _, l := range links {
		if !publisher.IsRepository(l.Label) {
			continue
		}
		a.attempt(ctx, &res, publisher.FamilyRepository, a.strategy("PMC", a.repository), request(l))
		break
	}

	if !res.Succeeded() {
		for _, l := range links {
			if publisher.IsRepository(l.Label) {
				continue
			}
			family, strategy := a.Route(l.Label)
			a.attempt(ctx, &res, family, strategy, request(l))
			if res.Succeeded() {
				break
			}
		}
	}

	if res.Succeeded() {
		if err := writeResult(filepath.Join(outDir, ResultFile), res); err != nil {
			a.logger.Warn().Err(err).Str("refid", art.RefID).Msg("acquire: writing result file")
		}
	}
	return res
}

// attempt runs one strategy and merges its result into res.
func (a *Acquirer) attempt(ctx context.Context, res *types.AcquisitionResult, family publisher.Family, s Strategy, req Request) {
	a.logger.Debug().Str("refid", req.RefID).Str("label", req.Label).Stringer("family", family).Msg("acquire: trying")
	r := s(ctx, req)
	res.Merge(r)
	if !r.Succeeded() && a.cfg.Verbose {
		fmt.Fprintf(a.out, "%s download failed: %s\n", r.Source, r.Message)
	}
}

// links fetches the PubMed article page, retrying up to MaxTrial times, and
// parses its full-text links.
func (a *Acquirer) links(ctx context.Context, refID string) (types.Links, error) {
	req, err := a.newRequest(ctx, pubmedBase+refID+"/", nil)
	if err != nil {
		return nil, err
	}
	body, err := httputil.FetchWithTrials(ctx, a.client, req, a.cfg.MaxTrial)
	if err != nil {
		return nil, fmt.Errorf("fetching PubMed page: %w", err)
	}
	return publisher.ParseLinks(bytes.NewReader(body))
}

func writeResult(path string, res types.AcquisitionResult) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// BatchResult holds the outcome of a batch acquisition run.
type BatchResult struct {
	Succeeded int
	Failed    int
	Results   []types.AcquisitionResult
}

// Total returns the number of articles processed.
func (r BatchResult) Total() int {
	return r.Succeeded + r.Failed
}

// HasFailures reports whether any article failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Batch acquires articles one after another, printing a status line per
// article and a summary. DownloadDelay separates consecutive articles.
func (a *Acquirer) Batch(ctx context.Context, arts []Article) BatchResult {
	var result BatchResult
	for i, art := range arts {
		if i > 0 && a.cfg.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(a.cfg.DownloadDelay):
			}
		}
		if ctx.Err() != nil {
			res := types.AcquisitionResult{RefID: art.RefID}
			res.Fail(ctx.Err().Error())
			result.Results = append(result.Results, res)
			result.Failed++
			fmt.Fprintf(a.out, "failed:   %s (%s)\n", art.RefID, res.Message)
			continue
		}

		res := a.FullText(ctx, art)
		result.Results = append(result.Results, res)
		if res.Succeeded() {
			result.Succeeded++
			fmt.Fprintf(a.out, "acquired: %s (%s) %s\n", art.RefID, res.Source, res.Path)
		} else {
			result.Failed++
			fmt.Fprintf(a.out, "failed:   %s (%s)\n", art.RefID, res.Message)
		}
	}
	fmt.Fprintf(a.out, "\nBatch summary: %d acquired, %d failed (total: %d)\n",
		result.Succeeded, result.Failed, result.Total())
	return result
}
