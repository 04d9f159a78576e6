// Package pkg provides the libraries behind chextra, a checker for Python
// optional dependencies ("extras").
//
// # Overview
//
// A Python distribution declares optional features as extras in its
// Requires-Dist metadata:
//
//	Requires-Dist: requests
//	Requires-Dist: matplotlib; extra == "viz"
//
// Code that implements an optional feature calls the checker on entry and
// gets a warning, or an error when eager, naming the dependencies that are
// not installed and the pip command that installs them.
//
// # Architecture
//
//	[metadata] installed *.dist-info / *.egg-info, pyproject.toml
//	     ↓
//	[pep508] requirement and marker parsing, name normalization
//	     ↓
//	[extras] grouping by extra, memoized in a [cache] table
//	     ↓
//	[extras] Checker.Warn → diagnostics and typed [errors]
//
// [caller] derives the default distribution and extra from the calling
// package, and [observability] exposes hooks around checks and cache lookups.
//
// # Quick Start
//
//	env := metadata.NewEnvironment("/opt/venv/lib/python3.12/site-packages")
//	checker := extras.NewChecker(env, nil, extras.LogReporter{})
//	err := checker.Warn(ctx, extras.Request{Package: "acme", Extras: []string{"viz"}})
//
// [metadata]: github.com/matzehuels/chextra/pkg/metadata
// [pep508]: github.com/matzehuels/chextra/pkg/pep508
// [extras]: github.com/matzehuels/chextra/pkg/extras
// [cache]: github.com/matzehuels/chextra/pkg/cache
// [caller]: github.com/matzehuels/chextra/pkg/caller
// [errors]: github.com/matzehuels/chextra/pkg/errors
// [observability]: github.com/matzehuels/chextra/pkg/observability
package pkg
