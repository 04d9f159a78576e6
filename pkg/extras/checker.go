package extras

import (
	"context"
	"time"

	"github.com/matzehuels/chextra/pkg/cache"
	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/metadata"
	"github.com/matzehuels/chextra/pkg/observability"
	"github.com/matzehuels/chextra/pkg/pep508"
)

// scriptPackages are the caller identities of code run as a top-level
// program: Go's package main and Python's __main__.
var scriptPackages = map[string]bool{"main": true, "__main__": true}

// Request describes a check.
type Request struct {
	// Package is the distribution to inspect. Defaults to Caller[0].
	Package string

	// Extras are the extras the calling code needs. Defaults to the last
	// Caller segment.
	Extras []string

	// Eager turns missing dependencies into a returned
	// *errors.MissingDependenciesError instead of diagnostics only.
	Eager bool

	// Caller holds the segments of the calling module's path, e.g.
	// ["acme", "viz"], used only to default Package and Extras.
	Caller []string
}

// resolve fills defaults from the caller and normalizes extras. ok is false
// when the request cannot be attributed to a distribution and extra.
func (r Request) resolve() (pkg string, extras []string, ok bool) {
	pkg, extras = r.Package, r.Extras
	if len(r.Caller) > 0 {
		if pkg == "" {
			pkg = r.Caller[0]
		}
		if len(extras) == 0 {
			extras = []string{r.Caller[len(r.Caller)-1]}
		}
	}
	if pkg == "" || scriptPackages[pkg] || len(extras) == 0 {
		return "", nil, false
	}
	normalized := make([]string, len(extras))
	for i, e := range extras {
		normalized[i] = pep508.NormalizeExtra(e)
	}
	return pkg, normalized, true
}

// Checker checks requested extras against an environment.
// It is safe for concurrent use if its Source and Reporter are.
type Checker struct {
	source   metadata.Source
	grouper  *Grouper
	reporter Reporter
}

// NewChecker creates a Checker. The installed set is always read from src;
// groups are memoized in store (nil for a fresh table). A nil reporter
// discards diagnostics.
func NewChecker(src metadata.Source, store cache.Store[Groups], reporter Reporter) *Checker {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Checker{
		source:   src,
		grouper:  NewGrouper(src, store),
		reporter: reporter,
	}
}

// Grouper returns the checker's memoizing grouper.
func (c *Checker) Grouper() *Grouper { return c.grouper }

// Warn checks that every dependency of the requested extras is installed.
//
// A request that cannot be attributed to a distribution and extra reports a
// [KindCannotGuess] diagnostic and returns nil. Otherwise one
// [KindMissingExtra] diagnostic is reported per extra with missing
// dependencies.
//
// Errors:
//   - the source's not-found error, unchanged, for unknown distributions
//   - *errors.UnresolvableExtraError if an extra is not declared
//   - *errors.MissingDependenciesError if Eager is set and anything is
//     missing, listing the missing dependencies of all requested extras
func (c *Checker) Warn(ctx context.Context, req Request) (err error) {
	pkg, extras, ok := req.resolve()
	if !ok {
		c.reporter.Report(Diagnostic{Kind: KindCannotGuess, Message: cannotGuessMessage})
		return nil
	}

	var missing []string
	start := time.Now()
	observability.Check().OnCheckStart(ctx, pkg, extras)
	defer func() {
		observability.Check().OnCheckComplete(ctx, pkg, extras, len(missing), time.Since(start), err)
	}()

	groups, err := c.grouper.Groups(ctx, pkg)
	if err != nil {
		return err
	}
	installed, err := c.source.Installed(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, extra := range extras {
		deps, ok := groups.Deps(extra)
		if !ok {
			return &errors.UnresolvableExtraError{Package: pkg, Extra: extra, Valid: groups.Extras()}
		}
		absent := absentDeps(deps, installed)
		if len(absent) == 0 {
			continue
		}
		c.reporter.Report(missingExtra(pkg, extra, absent))
		for _, dep := range absent {
			if !seen[dep] {
				seen[dep] = true
				missing = append(missing, dep)
			}
		}
	}

	if req.Eager && len(missing) > 0 {
		return &errors.MissingDependenciesError{Package: pkg, Missing: missing}
	}
	return nil
}

// absentDeps returns deps not in installed, deduplicated, in order.
func absentDeps(deps []string, installed metadata.InstalledSet) []string {
	var out []string
	seen := make(map[string]bool)
	for _, dep := range deps {
		key := pep508.NormalizeName(dep)
		if installed.Has(dep) || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, dep)
	}
	return out
}
