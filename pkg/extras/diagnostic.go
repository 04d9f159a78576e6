package extras

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// KindCannotGuess is reported when the distribution or extra was omitted
	// and could not be derived from the caller.
	KindCannotGuess Kind = "cannot-guess"

	// KindMissingExtra is reported once per requested extra whose
	// dependencies are not all installed.
	KindMissingExtra Kind = "missing-extra"
)

const cannotGuessMessage = "can't guess the package or extras when running as a script " +
	"and not calling from a package, please set them both explicitly"

// Diagnostic is an advisory produced by a check. Diagnostics never change
// control flow; errors are returned separately.
type Diagnostic struct {
	Kind    Kind
	Package string   // empty for KindCannotGuess
	Extra   string   // normalized extra name, empty for KindCannotGuess
	Missing []string // uninstalled dependencies of Extra
	Message string
}

// InstallHint returns the pip requirement that would satisfy the diagnostic,
// e.g. "acme[viz]". Empty for diagnostics without an extra.
func (d Diagnostic) InstallHint() string {
	if d.Package == "" || d.Extra == "" {
		return ""
	}
	return fmt.Sprintf("%s[%s]", d.Package, d.Extra)
}

func missingExtra(pkg, extra string, missing []string) Diagnostic {
	return Diagnostic{
		Kind:    KindMissingExtra,
		Package: pkg,
		Extra:   extra,
		Missing: missing,
		Message: fmt.Sprintf("the feature you're trying to use requires the extra %q, "+
			"install it by running `pip install %s[%s]`", extra, pkg, extra),
	}
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// NopReporter discards diagnostics.
type NopReporter struct{}

// Report does nothing.
func (NopReporter) Report(Diagnostic) {}

// Recorder collects diagnostics in memory. It is safe for concurrent use.
type Recorder struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// Report appends d.
func (r *Recorder) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns a copy of everything reported so far.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.diagnostics...)
}

// LogReporter writes diagnostics as warnings to a charmbracelet logger.
type LogReporter struct {
	Logger *log.Logger // nil uses log.Default()
}

// Report logs d at warn level.
func (r LogReporter) Report(d Diagnostic) {
	l := r.Logger
	if l == nil {
		l = log.Default()
	}
	if d.Kind == KindMissingExtra {
		l.Warn(d.Message, "package", d.Package, "extra", d.Extra, "missing", d.Missing)
		return
	}
	l.Warn(d.Message)
}

// MultiReporter forwards every diagnostic to each reporter in order.
type MultiReporter []Reporter

// Report forwards d.
func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		r.Report(d)
	}
}
