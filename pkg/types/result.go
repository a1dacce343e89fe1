// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Status is the terminal state of an acquisition attempt. A fresh result
// starts as StatusUnknown and exactly one of the other two values is set
// before it is returned to the caller.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// PublisherLink is one full-text outbound link found on a PubMed article page.
type PublisherLink struct {
	// Label identifies the full-text provider, e.g. "Elsevier Science" or
	// "PubMed Central".
	Label string `json:"label" yaml:"label"`

	// Target is the outbound URL.
	Target string `json:"target" yaml:"target"`
}

// Links is the per-article label -> link mapping. Labels are unique and
// order follows page rendering order.
type Links []PublisherLink

// Add appends a link unless its label is already present. It reports
// whether the link was added.
func (l *Links) Add(label, target string) bool {
	if l.Has(label) {
		return false
	}
	*l = append(*l, PublisherLink{Label: label, Target: target})
	return true
}

// Get returns the link with the given label.
func (l Links) Get(label string) (PublisherLink, bool) {
	for _, link := range l {
		if link.Label == label {
			return link, true
		}
	}
	return PublisherLink{}, false
}

// Has reports whether a link with the given label exists.
func (l Links) Has(label string) bool {
	_, ok := l.Get(label)
	return ok
}

// Labels returns the labels in discovery order.
func (l Links) Labels() []string {
	labels := make([]string, len(l))
	for i, link := range l {
		labels[i] = link.Label
	}
	return labels
}

// AcquisitionResult is the outcome of one full-text acquisition attempt.
// Optional fields are empty strings rather than absent keys.
type AcquisitionResult struct {
	// RefID is the PubMed identifier of the article.
	RefID string `json:"refid" yaml:"refid"`

	Status Status `json:"status" yaml:"status"`

	// Source is the publisher tag of the strategy that produced this result.
	// It may differ from the link label (e.g. "PNAS" for an Atypon link).
	Source string `json:"source" yaml:"source"`

	// URL is the last URL the strategy fetched or rendered.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Path is the primary saved artifact. Set only when the file exists.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Log collects secondary failures (e.g. supplemental downloads) of the
	// strategy that produced this result.
	Log []string `json:"log,omitempty" yaml:"log,omitempty"`

	// Message is a human-readable failure or summary text.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Accession is the PubMed Central id (without the "PMC" prefix) when the
	// repository lookup resolved one.
	Accession string `json:"accession,omitempty" yaml:"accession,omitempty"`

	// Supplements lists supplemental files written next to the primary artifact.
	Supplements []string `json:"supplements,omitempty" yaml:"supplements,omitempty"`

	// Links holds the full-text links discovered on the article page.
	Links Links `json:"links,omitempty" yaml:"links,omitempty"`
}

// Succeeded reports whether the result carries a success status.
func (r AcquisitionResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Fail sets a failure status with the given message.
func (r *AcquisitionResult) Fail(msg string) {
	r.Status = StatusFailure
	r.Message = msg
}

// Logf formats a secondary failure and appends it to the log.
func (r *AcquisitionResult) Logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Merge overwrites the strategy fields of r with those of next. RefID and
// Links belong to the orchestrator and are left untouched.
func (r *AcquisitionResult) Merge(next AcquisitionResult) {
	r.Status = next.Status
	r.Source = next.Source
	r.URL = next.URL
	r.Path = next.Path
	r.Log = next.Log
	r.Message = next.Message
	r.Accession = next.Accession
	r.Supplements = next.Supplements
}
