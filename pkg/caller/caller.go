// Package caller guesses who is calling from the Go call stack.
//
// It is an optional convenience for filling in a distribution name and extra
// that a caller did not pass explicitly. The guess is heuristic: it returns
// the segments of the calling function's import path, with a leading host
// segment such as "github.com" dropped. Nothing here ever fails; when no
// identity can be determined the result is an empty slice.
//
//	// in package example.com/acme/viz
//	caller.Path(0) // ["acme", "viz"]
//
// Programs in package main yield ["main"].
package caller

import (
	"runtime"
	"strings"
)

// Path returns the import path segments of the package owning the frame skip
// levels above the caller of Path. Path(0) describes the function that calls
// Path, Path(1) its caller, and so on.
func Path(skip int) []string {
	if skip < 0 {
		return []string{}
	}
	pcs := make([]uintptr, 1)
	// skip runtime.Callers and Path itself
	if runtime.Callers(skip+2, pcs) == 0 {
		return []string{}
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	if frame.Function == "" {
		return []string{}
	}
	return Segments(packagePath(frame.Function))
}

// packagePath extracts the import path from a fully qualified function name
// such as "example.com/acme/viz.(*Plot).Draw" or "example.com/acme/viz.init.0".
func packagePath(funcName string) string {
	slash := strings.LastIndexByte(funcName, '/')
	dot := strings.IndexByte(funcName[slash+1:], '.')
	if dot < 0 {
		return funcName
	}
	return funcName[:slash+1+dot]
}

// Segments splits an import path into its segments. A leading host segment
// (one containing a dot) is dropped and an external test package suffix
// ("_test") is removed from the last segment.
func Segments(importPath string) []string {
	if importPath == "" {
		return []string{}
	}
	segs := strings.Split(importPath, "/")
	if len(segs) > 1 && strings.Contains(segs[0], ".") {
		segs = segs[1:]
	}
	last := len(segs) - 1
	segs[last] = strings.TrimSuffix(segs[last], "_test")
	return segs
}

// FromModule splits a dotted module name such as "acme.viz.renderer", for
// callers identified outside of Go.
func FromModule(module string) []string {
	module = strings.Trim(strings.TrimSpace(module), ".")
	if module == "" {
		return []string{}
	}
	var segs []string
	for _, s := range strings.Split(module, ".") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
