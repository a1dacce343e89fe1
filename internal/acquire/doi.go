// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"regexp"
	"strings"
)

const doiPrefix = "doi: "

// FormDOI normalises a PubMed-style DOI string to the "doi: 10.x/y" form.
// A string that embeds "doi: " is cut to start there; a bare DOI gets the
// prefix.
func FormDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" || strings.HasPrefix(doi, doiPrefix) {
		return doi
	}
	if i := strings.Index(doi, doiPrefix); i >= 0 {
		return doi[i:]
	}
	return doiPrefix + doi
}

// BareDOI returns the DOI itself ("10.x/y") from any form FormDOI accepts.
// Trailing text after the DOI is dropped.
func BareDOI(doi string) string {
	doi = strings.TrimPrefix(FormDOI(doi), doiPrefix)
	if fields := strings.Fields(doi); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

var (
	imageMIME       = regexp.MustCompile(`^(image|img)/[a-z]+`)
	applicationMIME = regexp.MustCompile(`^application/[a-z.]+`)
)

// ExtFromMIME maps a declared MIME type to the file extension supplemental
// files are saved under. Unrecognised types map to "txt".
func ExtFromMIME(mime string) string {
	switch {
	case imageMIME.MatchString(mime):
		switch {
		case strings.Contains(mime, "tif"):
			return "tif"
		case strings.Contains(mime, "jp"):
			return "jpeg"
		case strings.Contains(mime, "png"):
			return "png"
		case strings.Contains(mime, "webp"):
			return "webp"
		}
	case applicationMIME.MatchString(mime):
		switch {
		case strings.Contains(mime, "pdf"):
			return "pdf"
		case strings.Contains(mime, "zip"):
			return "zip"
		case strings.Contains(mime, "word"):
			return "docx"
		case strings.Contains(mime, "openxml") && strings.Contains(mime, "sheet"),
			strings.Contains(mime, "excel"):
			return "xlsx"
		}
	}
	return "txt"
}
