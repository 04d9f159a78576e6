// Package metadata reads Python distribution metadata from disk.
//
// # Sources
//
// A [Source] answers two questions: what does a named distribution declare
// ([Source.Distribution]) and which distributions are installed right now
// ([Source.Installed]). Three implementations are provided:
//
//   - [Environment] scans site-packages directories for *.dist-info and
//     *.egg-info metadata, the same places the Python import system looks.
//   - [Project] reads the [project] table of a pyproject.toml so a source
//     checkout can be inspected before it is installed.
//   - [Multi] chains sources; the first one that knows a distribution wins
//     and installed sets are merged.
//
// # Core metadata
//
// [ParseCoreMetadata] parses the RFC 822 style METADATA / PKG-INFO header
// block. Only the fields needed to reason about extras are kept: Name,
// Version, Requires-Dist and Provides-Extra.
//
// Nothing is cached here. Every call re-reads the filesystem so installed
// sets always reflect the environment at call time.
package metadata
