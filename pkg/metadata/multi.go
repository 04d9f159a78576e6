package metadata

import (
	"context"

	"github.com/matzehuels/chextra/pkg/errors"
)

// Multi chains sources. Distribution lookups return the first hit; installed
// sets are merged.
type Multi []Source

// Distribution asks each source in order and returns the first match.
// Errors other than not-found stop the search.
func (m Multi) Distribution(ctx context.Context, name string) (*Distribution, error) {
	for _, s := range m {
		d, err := s.Distribution(ctx, name)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, errors.ErrCodePackageNotFound) {
			return nil, err
		}
	}
	return nil, notFound(name)
}

// Installed returns the union of every source's installed set.
func (m Multi) Installed(ctx context.Context) (InstalledSet, error) {
	set := make(InstalledSet)
	for _, s := range m {
		part, err := s.Installed(ctx)
		if err != nil {
			return nil, err
		}
		for name := range part {
			set[name] = struct{}{}
		}
	}
	return set, nil
}

var _ Source = Multi(nil)
