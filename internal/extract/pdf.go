// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdflog "github.com/pdfcpu/pdfcpu/pkg/log"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"

	"github.com/pdiddy/refminer/pkg/types"
)

// ContentsDir is the directory, next to a mined PDF, that receives the
// images embedded in it.
const ContentsDir = "contents"

// StructureSuffix ends the name of the page structure file written beside a
// PDF.
const StructureSuffix = "_extract.json"

var quietPDF sync.Once

// PDF yields one unit per page. As side artifacts it writes every embedded
// raster image to <dir>/contents/{page}_{index}.{ext} and the per-page
// structure to <dir>/<name>_extract.json. Page and image numbers are
// 1-based.
type PDF struct {
	Logger zerolog.Logger
}

// Extract implements Extractor.
func (p *PDF) Extract(path string) ([]types.Unit, error) {
	// Malformed documents make pdfcpu log a lot; its own loggers stay off.
	quietPDF.Do(func() {
		pdflog.DisableLoggers()
		api.DisableConfigDir()
	})

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}
	tr, err := newTextReader(f)
	if err != nil {
		p.Logger.Warn().Err(err).Str("file", path).Msg("extract: pdf text unavailable")
	}

	dir := filepath.Dir(path)
	label := filepath.Base(path)
	imgDir := filepath.Join(dir, ContentsDir)

	units := make([]types.Unit, 0, ctx.PageCount)
	records := make([]types.PageRecord, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		rec := types.PageRecord{Page: pageNr, Text: p.pageText(tr, pageNr, path), Images: []string{}}
		imgs, err := p.pageImages(ctx, pageNr, imgDir)
		if err != nil {
			p.Logger.Warn().Err(err).Str("file", path).Int("page", pageNr).Msg("extract: page images")
		}
		rec.Images = append(rec.Images, imgs...)

		records = append(records, rec)
		units = append(units, types.Unit{Text: rec.Text, Label: label})
	}

	if err := writeStructure(path, records); err != nil {
		return nil, err
	}
	return units, nil
}

// newTextReader reads f again for text decoding. Fonts and their encodings
// are resolved by the reader, so non-ASCII text comes out as UTF-8.
func newTextReader(f *os.File) (r *pdf.Reader, err error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	defer func() {
		if v := recover(); v != nil {
			r, err = nil, fmt.Errorf("parsing pdf text: %v", v)
		}
	}()
	return pdf.NewReader(f, info.Size())
}

func (p *PDF) pageText(r *pdf.Reader, pageNr int, path string) (text string) {
	if r == nil {
		return ""
	}
	defer func() {
		if v := recover(); v != nil {
			p.Logger.Warn().Str("file", path).Int("page", pageNr).Interface("panic", v).Msg("extract: page text")
			text = ""
		}
	}()
	if pageNr > r.NumPage() {
		return ""
	}
	page := r.Page(pageNr)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		p.Logger.Warn().Err(err).Str("file", path).Int("page", pageNr).Msg("extract: page text")
		return ""
	}
	return text
}

// pageImages writes the page's images in object order and returns their
// paths.
func (p *PDF) pageImages(ctx *model.Context, pageNr int, imgDir string) ([]string, error) {
	imgs, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
	if err != nil {
		return nil, err
	}
	if len(imgs) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", imgDir, err)
	}

	objNrs := make([]int, 0, len(imgs))
	for nr := range imgs {
		objNrs = append(objNrs, nr)
	}
	sort.Ints(objNrs)

	var paths []string
	for i, nr := range objNrs {
		img := imgs[nr]
		ext := strings.TrimPrefix(img.FileType, ".")
		if ext == "" {
			ext = "bin"
		}
		out := filepath.Join(imgDir, fmt.Sprintf("%d_%d.%s", pageNr, i+1, ext))
		if err := writeImage(out, img); err != nil {
			return paths, err
		}
		paths = append(paths, out)
	}
	return paths, nil
}

func writeImage(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// StructurePath returns where the page structure of the PDF at path is
// written.
func StructurePath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(path), name+StructureSuffix)
}

func writeStructure(path string, records []types.PageRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding page structure: %w", err)
	}
	out := StructurePath(path)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
