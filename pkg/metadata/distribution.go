package metadata

import (
	"bufio"
	"context"
	"io"
	"net/textproto"
	"sort"
	"strings"

	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/pep508"
)

// Distribution is the metadata of one Python distribution.
type Distribution struct {
	Name          string   // Name as declared in metadata (not normalized)
	Version       string   // Version string, may be empty for source trees
	RequiresDist  []string // Raw PEP 508 requirement strings, in declaration order
	ProvidesExtra []string // Declared extras as written, in declaration order
	Path          string   // Metadata location (dist-info dir, PKG-INFO or pyproject.toml)
}

// Source provides distribution metadata and the set of installed distributions.
type Source interface {
	// Distribution returns the metadata of the named distribution. Returns an
	// [errors.ErrCodePackageNotFound] error if the source does not know it.
	Distribution(ctx context.Context, name string) (*Distribution, error)

	// Installed returns the distributions currently installed.
	Installed(ctx context.Context) (InstalledSet, error)
}

// InstalledSet is a snapshot of installed distribution names, keyed by their
// PEP 503 normalized form.
type InstalledSet map[string]struct{}

// NewInstalledSet builds a set from raw distribution names.
func NewInstalledSet(names ...string) InstalledSet {
	s := make(InstalledSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add records a distribution as installed.
func (s InstalledSet) Add(name string) {
	s[pep508.NormalizeName(name)] = struct{}{}
}

// Has reports whether the named distribution is installed.
func (s InstalledSet) Has(name string) bool {
	_, ok := s[pep508.NormalizeName(name)]
	return ok
}

// Names returns the normalized names in sorted order.
func (s InstalledSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// notFound builds the error returned for unknown distributions.
func notFound(name string) error {
	return errors.New(errors.ErrCodePackageNotFound, "no distribution named %s", name)
}

// ParseCoreMetadata parses a METADATA or PKG-INFO document.
// Parsing stops at the first blank line; the description body is ignored.
func ParseCoreMetadata(r io.Reader) (*Distribution, error) {
	tp := textproto.NewReader(bufio.NewReader(r))
	hdr, err := tp.ReadMIMEHeader()
	if err != nil && !(err == io.EOF && len(hdr) > 0) {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read core metadata")
	}

	d := &Distribution{
		Name:          strings.TrimSpace(hdr.Get("Name")),
		Version:       strings.TrimSpace(hdr.Get("Version")),
		RequiresDist:  trimAll(hdr.Values("Requires-Dist")),
		ProvidesExtra: trimAll(hdr.Values("Provides-Extra")),
	}
	if d.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "core metadata has no Name field")
	}
	return d, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
