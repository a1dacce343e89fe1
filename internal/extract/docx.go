// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/refminer/pkg/types"
)

const docxBody = "word/document.xml"

// Docx yields the body paragraphs of a word-processor document in order,
// then the cells of every top-level table row by row. A cell's text joins
// its paragraphs with newlines. Paragraphs inside tables only appear as
// part of their cell.
type Docx struct{}

// Extract implements Extractor.
func (Docx) Extract(path string) ([]types.Unit, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer zr.Close()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("%s not found in document", docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", docxBody, err)
	}
	defer rc.Close()

	paragraphs, cells, err := walkDocx(xml.NewDecoder(rc))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", docxBody, err)
	}

	label := filepath.Base(path)
	units := make([]types.Unit, 0, len(paragraphs)+len(cells))
	for _, p := range paragraphs {
		units = append(units, types.Unit{Text: p, Label: label})
	}
	for _, c := range cells {
		units = append(units, types.Unit{Text: c, Label: label})
	}
	return units, nil
}

// walkDocx collects body paragraph texts and top-level table cell texts.
// Empty paragraphs and cells are dropped. Paragraphs nested in an open one,
// as in text boxes, are collected on their own and leave the outer text
// intact.
func walkDocx(d *xml.Decoder) (paragraphs, cells []string, err error) {
	var (
		tableDepth int
		inText     bool
		paras      []*strings.Builder
		cellParas  []string
		inCell     bool
	)
	write := func(s string) {
		if len(paras) > 0 {
			paras[len(paras)-1].WriteString(s)
		}
	}
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return paragraphs, cells, nil
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tc":
				if tableDepth == 1 {
					inCell = true
					cellParas = cellParas[:0]
				}
			case "p":
				paras = append(paras, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				write("\t")
			case "br", "cr":
				write("\n")
			}

		case xml.CharData:
			if inText {
				write(string(t))
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if len(paras) == 0 {
					continue
				}
				text := paras[len(paras)-1].String()
				paras = paras[:len(paras)-1]
				switch {
				case tableDepth == 0:
					if strings.TrimSpace(text) != "" {
						paragraphs = append(paragraphs, text)
					}
				case inCell:
					cellParas = append(cellParas, text)
				}
			case "tc":
				if tableDepth == 1 && inCell {
					if text := strings.Join(cellParas, "\n"); strings.TrimSpace(text) != "" {
						cells = append(cells, text)
					}
					inCell = false
				}
			case "tbl":
				tableDepth--
			}
		}
	}
}
