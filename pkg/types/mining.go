// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// Unit is one independently scanned piece of extracted text: a PDF page, a
// document paragraph or table cell, a spreadsheet cell, or a whole text file.
type Unit struct {
	Text string

	// Label names the originating file (base name) the unit belongs to.
	Label string
}

// PageRecord is one entry of the per-page structure dump written next to a
// mined PDF.
type PageRecord struct {
	Page   int      `json:"page"`
	Text   string   `json:"text"`
	Images []string `json:"img"`
}

// MinedMatch is one regex hit with its surrounding context.
type MinedMatch struct {
	Term    string `json:"term" yaml:"term"`
	File    string `json:"file" yaml:"file"`
	Context string `json:"context" yaml:"context"`
}

// Collector groups mining hits by matched term, then by file name. Every
// occurrence is kept; identical snippets are not deduplicated.
type Collector map[string]map[string][]string

// Add appends a context snippet under term and file, creating either level
// as needed.
func (c Collector) Add(term, file, context string) {
	files, ok := c[term]
	if !ok {
		files = make(map[string][]string)
		c[term] = files
	}
	files[file] = append(files[file], context)
}

// Terms returns the matched terms in sorted order.
func (c Collector) Terms() []string {
	terms := make([]string, 0, len(c))
	for t := range c {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Count returns the total number of context snippets.
func (c Collector) Count() int {
	n := 0
	for _, files := range c {
		for _, contexts := range files {
			n += len(contexts)
		}
	}
	return n
}

// Matches flattens the collector in term, file, occurrence order.
func (c Collector) Matches() []MinedMatch {
	var out []MinedMatch
	for _, term := range c.Terms() {
		files := c[term]
		names := make([]string, 0, len(files))
		for f := range files {
			names = append(names, f)
		}
		sort.Strings(names)
		for _, f := range names {
			for _, ctx := range files[f] {
				out = append(out, MinedMatch{Term: term, File: f, Context: ctx})
			}
		}
	}
	return out
}
