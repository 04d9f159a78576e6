package extras

import (
	"context"

	"github.com/matzehuels/chextra/pkg/cache"
	"github.com/matzehuels/chextra/pkg/metadata"
	"github.com/matzehuels/chextra/pkg/observability"
	"github.com/matzehuels/chextra/pkg/pep508"
)

// cacheKeyType labels grouper lookups in cache hooks.
const cacheKeyType = "groups"

// Grouper looks up distributions and memoizes their groups by normalized
// distribution name. Entries are never invalidated.
type Grouper struct {
	source metadata.Source
	store  cache.Store[Groups]
}

// NewGrouper creates a Grouper reading from src. A nil store gets a fresh
// in-process table; pass cache.Null[Groups]{} to disable memoization.
func NewGrouper(src metadata.Source, store cache.Store[Groups]) *Grouper {
	if store == nil {
		store = cache.NewTable[Groups]()
	}
	return &Grouper{source: src, store: store}
}

// Groups returns the groups of the named distribution. Lookup failures,
// including not-found, are returned as the source reported them and are not
// cached.
func (g *Grouper) Groups(ctx context.Context, pkg string) (Groups, error) {
	groups, hit, err := cache.GetOrCompute(g.store, pep508.NormalizeName(pkg), func() (Groups, error) {
		d, err := g.source.Distribution(ctx, pkg)
		if err != nil {
			return Groups{}, err
		}
		return Group(d)
	})
	if hit {
		observability.Cache().OnCacheHit(ctx, cacheKeyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}
	return groups, err
}
