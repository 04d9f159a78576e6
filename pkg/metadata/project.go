package metadata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/pep508"
)

// Project exposes the pyproject.toml of a source tree as a distribution.
// Both PEP 621 ([project]) and Poetry ([tool.poetry]) layouts are read. For
// Poetry, non-optional [tool.poetry.dependencies] other than python are
// unconditional requirements; their version constraints use Poetry syntax and
// are dropped. Dependency groups are development-only and ignored.
// A source tree installs nothing, so its installed set is always empty.
type Project struct {
	Dir string // directory containing pyproject.toml
}

type pyproject struct {
	Project struct {
		Name                 string              `toml:"name"`
		Version              string              `toml:"version"`
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name         string              `toml:"name"`
			Version      string              `toml:"version"`
			Dependencies map[string]any      `toml:"dependencies"`
			Extras       map[string][]string `toml:"extras"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Load parses pyproject.toml into a Distribution. Optional dependencies are
// rewritten as Requires-Dist entries gated on their extra, in document order.
func (p *Project) Load() (*Distribution, error) {
	path := p.path()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	var doc pyproject
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}

	d := &Distribution{
		Name:         doc.Project.Name,
		Version:      doc.Project.Version,
		RequiresDist: append([]string(nil), doc.Project.Dependencies...),
		Path:         path,
	}
	extras, table := doc.Project.OptionalDependencies, "project.optional-dependencies"
	if d.Name == "" {
		d.Name, d.Version = doc.Tool.Poetry.Name, doc.Tool.Poetry.Version
		extras, table = doc.Tool.Poetry.Extras, "tool.poetry.extras"
		for _, dep := range orderedKeys(md, "tool.poetry.dependencies") {
			if requiredPoetryDep(dep, doc.Tool.Poetry.Dependencies[dep]) {
				d.RequiresDist = append(d.RequiresDist, dep)
			}
		}
	}
	if d.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s declares no project name", path)
	}

	for _, extra := range orderedKeys(md, table) {
		if _, ok := extras[extra]; !ok {
			continue
		}
		d.ProvidesExtra = append(d.ProvidesExtra, extra)
		for _, dep := range extras[extra] {
			d.RequiresDist = append(d.RequiresDist, gate(dep, extra))
		}
	}
	return d, nil
}

// orderedKeys returns the keys of a TOML table in document order.
func orderedKeys(md toml.MetaData, table string) []string {
	var keys []string
	depth := len(strings.Split(table, "."))
	for _, k := range md.Keys() {
		if len(k) == depth+1 && strings.Join(k[:depth], ".") == table {
			keys = append(keys, k[depth])
		}
	}
	return keys
}

// requiredPoetryDep reports whether a [tool.poetry.dependencies] entry is an
// unconditional runtime requirement. Entries are a constraint string, an
// inline table, or an array of tables for per-platform constraints.
func requiredPoetryDep(name string, spec any) bool {
	if strings.EqualFold(name, "python") {
		return false
	}
	switch v := spec.(type) {
	case map[string]any:
		optional, _ := v["optional"].(bool)
		return !optional
	case []map[string]any:
		for _, alt := range v {
			if optional, _ := alt["optional"].(bool); optional {
				return false
			}
		}
	case []any:
		for _, alt := range v {
			if m, ok := alt.(map[string]any); ok {
				if optional, _ := m["optional"].(bool); optional {
					return false
				}
			}
		}
	}
	return true
}

// gate makes req conditional on extra, keeping any existing marker.
func gate(req, extra string) string {
	return pep508.AddCondition(req, fmt.Sprintf("extra == %q", extra))
}

// Distribution returns the project if name matches its declared name. A
// directory without pyproject.toml knows no distribution, so chained sources
// are consulted next.
func (p *Project) Distribution(ctx context.Context, name string) (*Distribution, error) {
	if _, err := os.Stat(p.path()); os.IsNotExist(err) {
		return nil, notFound(name)
	}
	d, err := p.Load()
	if err != nil {
		return nil, err
	}
	if pep508.NormalizeName(d.Name) != pep508.NormalizeName(name) {
		return nil, notFound(name)
	}
	return d, nil
}

func (p *Project) path() string {
	return filepath.Join(p.Dir, "pyproject.toml")
}

// Installed returns an empty set.
func (p *Project) Installed(ctx context.Context) (InstalledSet, error) {
	return InstalledSet{}, nil
}

var _ Source = (*Project)(nil)
