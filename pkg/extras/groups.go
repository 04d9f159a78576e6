package extras

import (
	"encoding/json"

	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/metadata"
	"github.com/matzehuels/chextra/pkg/pep508"
)

// extraVar is the marker variable naming the requested extra.
const extraVar = "extra"

// Groups maps each declared extra, normalized, to the names of the
// distributions it requires, in metadata order. The "" group holds
// unconditional requirements and is always present.
type Groups struct {
	deps   map[string][]string
	extras []string // declared non-empty extras in metadata order
}

func newGroups(declared []string) Groups {
	g := Groups{deps: map[string][]string{"": {}}}
	for _, extra := range declared {
		extra = pep508.NormalizeExtra(extra)
		if _, ok := g.deps[extra]; ok {
			continue
		}
		g.deps[extra] = []string{}
		g.extras = append(g.extras, extra)
	}
	return g
}

// Deps returns the dependencies of a normalized extra and whether the extra
// is declared. Deps("") returns the unconditional requirements.
func (g Groups) Deps(extra string) ([]string, bool) {
	deps, ok := g.deps[extra]
	return deps, ok
}

// Extras returns the declared non-empty extras in metadata order.
func (g Groups) Extras() []string {
	return append([]string(nil), g.extras...)
}

// MarshalJSON encodes the groups as an object keyed by extra.
func (g Groups) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.deps)
}

// Group partitions d's requirements by extra. A requirement without a
// marker, or whose marker never compares the extra variable, is
// unconditional. Otherwise its name is appended to the group of every
// declared extra the marker compares against. Requirements gated only on
// undeclared extras cannot be requested and are left out.
//
// Returns an error if a requirement cannot be parsed.
func Group(d *metadata.Distribution) (Groups, error) {
	groups := newGroups(d.ProvidesExtra)

	for _, line := range d.RequiresDist {
		req, err := pep508.ParseRequirement(line)
		if err != nil {
			return Groups{}, errors.Wrap(errors.GetCode(err), err, "requirement %q of %s", line, d.Name)
		}
		var gating []string
		if req.Marker != nil && req.Marker.References(extraVar) {
			gating = req.GatingExtras()
		}
		if len(gating) == 0 {
			groups.deps[""] = append(groups.deps[""], req.Name)
			continue
		}
		for _, extra := range gating {
			if deps, ok := groups.deps[extra]; ok {
				groups.deps[extra] = append(deps, req.Name)
			}
		}
	}
	return groups, nil
}
