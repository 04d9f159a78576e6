package extras

import (
	"context"
	"sync"

	"github.com/matzehuels/chextra/pkg/caller"
	"github.com/matzehuels/chextra/pkg/metadata"
)

var (
	defaultMu      sync.Mutex
	defaultChecker *Checker
)

// Default returns the process-wide Checker used by [Warn], [WarnEager] and
// [WarnCaller]. It is created on first use from [metadata.DefaultPaths] and
// logs diagnostics with the default charmbracelet logger. Its groups cache
// lives for the rest of the process.
func Default() *Checker {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultChecker == nil {
		env := metadata.NewEnvironment(metadata.DefaultPaths()...)
		defaultChecker = NewChecker(env, nil, LogReporter{})
	}
	return defaultChecker
}

// SetDefault replaces the process-wide Checker. Passing nil resets it so the
// next call to [Default] builds a new one.
func SetDefault(c *Checker) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultChecker = c
}

// Warn checks the given extras of pkg with the default Checker and reports
// missing dependencies without failing.
func Warn(pkg string, extras ...string) error {
	return Default().Warn(context.Background(), Request{Package: pkg, Extras: extras})
}

// WarnEager is like [Warn] but returns a *errors.MissingDependenciesError
// when anything is missing.
func WarnEager(pkg string, extras ...string) error {
	return Default().Warn(context.Background(), Request{Package: pkg, Extras: extras, Eager: true})
}

// WarnCaller checks with both the distribution and the extra guessed from the
// calling package's import path. Call it from the init function of the
// package that the extra gates:
//
//	// package example.com/acme/viz
//	func init() { _ = extras.WarnCaller() }
func WarnCaller() error {
	return Default().Warn(context.Background(), Request{Caller: caller.Path(1)})
}
