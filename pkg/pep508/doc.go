// Package pep508 parses Python dependency specifiers.
//
// # Overview
//
// Installed Python distributions declare their dependencies as PEP 508
// strings in the Requires-Dist field of their core metadata:
//
//	matplotlib>=3.5; extra == "viz"
//	pywin32; sys_platform == "win32" and (extra == "win" or extra == "all")
//
// [ParseRequirement] splits such a line into a [Requirement] with its name,
// requested extras, version specifier or URL, and environment [Marker].
// Markers are parsed into a full expression tree so that every extra a
// requirement is gated on can be found, however deeply it is nested in
// and/or groups.
//
// # Normalization
//
// [NormalizeExtra] implements PEP 685 and [NormalizeName] implements PEP 503.
// Both collapse runs of "-", "_" and "." into a single "-" and lowercase the
// result, so "Foo_Bar.Baz" and "foo-bar-baz" compare equal.
//
// Markers are not evaluated against an interpreter environment; this package
// only exposes their structure.
package pep508
