// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/refminer/internal/publisher"
	"github.com/pdiddy/refminer/pkg/types"
)

// Request carries what a strategy needs to fetch one article from one
// provider.
type Request struct {
	RefID string
	// DOI is the bare DOI ("10.x/y").
	DOI   string
	Label string
	// URL is the provider link found on the article page.
	URL    string
	OutDir string
}

// Strategy fetches the full text of an article from one publisher family.
// It never panics and never returns an in-progress result.
type Strategy func(ctx context.Context, req Request) types.AcquisitionResult

// step is the body of a strategy. It fills res and returns an error for
// faults that should fail the strategy with the error's message.
type step func(ctx context.Context, req Request, res *types.AcquisitionResult) error

type route struct {
	family   publisher.Family
	strategy Strategy
}

// routes is the dispatch table, in priority order. The repository is not
// listed; FullText tries it before consulting the table.
func (a *Acquirer) routes() []route {
	return []route{
		{publisher.FamilyElsevier, a.strategy("Elsevier", a.elsevier)},
		{publisher.FamilySpringer, a.strategy("Springer", a.springer)},
		{publisher.FamilyAtypon, a.strategy("Atypon", a.atypon)},
		{publisher.FamilyWiley, a.strategy("Wiley", a.wiley)},
		{publisher.FamilyPLOS, a.strategy("PLOS", a.plos)},
		{publisher.FamilyColdSpringHarbor, a.strategy("", a.coldSpringHarbor)},
	}
}

// Route returns the family of label and the strategy that serves it.
// Labels of no known family get the generic page capture.
func (a *Acquirer) Route(label string) (publisher.Family, Strategy) {
	family := publisher.Classify(label)
	for _, r := range a.table {
		if r.family == family {
			return family, r.strategy
		}
	}
	return publisher.FamilyDefault, a.strategy("", a.generic)
}

// strategy wraps a step into a Strategy. The result starts with the given
// source tag (the link label when empty). Errors and panics become failures
// carrying their message; a step that returns without settling the status
// fails too.
func (a *Acquirer) strategy(source string, fn step) Strategy {
	return func(ctx context.Context, req Request) (res types.AcquisitionResult) {
		res = types.AcquisitionResult{RefID: req.RefID, Status: types.StatusUnknown, Source: source}
		if res.Source == "" {
			res.Source = req.Label
		}
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error().Interface("panic", r).Str("refid", req.RefID).Str("label", req.Label).Msg("acquire: strategy panicked")
				res.Fail(fmt.Sprintf("panic: %v", r))
			}
		}()

		if err := fn(ctx, req, &res); err != nil {
			res.Fail(err.Error())
			return res
		}
		switch res.Status {
		case types.StatusUnknown:
			res.Fail("strategy finished without a result")
		case types.StatusSuccess:
			if res.Message == "" && len(res.Log) > 0 {
				res.Message = strings.Join(res.Log, "\n")
			}
		}
		return res
	}
}
