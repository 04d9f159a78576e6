// Package extras warns when code gated by an uninstalled Python extra is
// about to be used.
//
// # Overview
//
// Python distributions declare optional dependency groups ("extras") in their
// metadata. A user who installs "acme" instead of "acme[viz]" gets a
// confusing import error deep inside acme's plotting code. This package
// explains that failure ahead of time:
//
//	err := extras.Warn("acme", "viz")
//
// reports an advisory diagnostic for every requested extra whose dependencies
// are not installed. With [WarnEager] the missing dependencies are also
// returned as an [errors.MissingDependenciesError].
//
// # Components
//
//   - [Group] partitions a distribution's requirements by the extra they are
//     gated on. The "" group holds unconditional requirements.
//   - [Grouper] memoizes groups per distribution name for its lifetime.
//   - [Checker] compares requested extras against the installed set and
//     reports [Diagnostic] records through a [Reporter].
//
// # Caller context
//
// When the distribution or extra is omitted, [Request.Caller] supplies
// defaults: the first segment names the distribution and the last one the
// extra. [WarnCaller] fills it from the Go call stack via package caller.
// Calls from a script (package main or __main__) cannot be attributed and
// produce a [KindCannotGuess] diagnostic instead of a check.
//
// # Caching
//
// Groups are computed once per distribution and never invalidated. If the
// environment's metadata changes mid-process the cached groups become stale;
// the installed set, however, is read fresh on every check.
package extras
