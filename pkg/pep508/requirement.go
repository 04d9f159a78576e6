package pep508

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/chextra/pkg/errors"
)

var (
	nameRE   = regexp.MustCompile(`^\s*([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	extrasRE = regexp.MustCompile(`^\s*\[([^\]]*)\]`)
)

// Requirement is a parsed dependency specifier.
type Requirement struct {
	Name      string   // Distribution name as written (not normalized)
	Extras    []string // Extras requested on the dependency, e.g. "requests[socks]"
	Specifier string   // Version specifier, e.g. ">=2.0,<3" (empty if none)
	URL       string   // Direct reference for "name @ url" requirements
	Marker    *Marker  // Environment marker, nil when absent
}

// ParseRequirement parses a single PEP 508 dependency specifier such as a
// Requires-Dist value.
//
// Returns an [errors.ErrCodeInvalidInput] error when no distribution name can
// be found and an [errors.ErrCodeInvalidMarker] error for malformed markers.
func ParseRequirement(s string) (*Requirement, error) {
	base, markerText := SplitMarker(s)
	m := nameRE.FindStringSubmatch(base)
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "requirement %q has no distribution name", s)
	}
	req := &Requirement{Name: m[1]}
	rest := base[len(m[0]):]

	if em := extrasRE.FindStringSubmatch(rest); em != nil {
		for _, e := range strings.Split(em[1], ",") {
			if e = strings.TrimSpace(e); e != "" {
				req.Extras = append(req.Extras, e)
			}
		}
		rest = rest[len(em[0]):]
	}

	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "@") {
		req.URL = strings.TrimSpace(rest[1:])
	} else {
		req.Specifier = normalizeSpecifier(rest)
	}

	if markerText != "" {
		marker, err := ParseMarker(markerText)
		if err != nil {
			return nil, err
		}
		req.Marker = marker
	}
	return req, nil
}

// SplitMarker splits a requirement string at its marker separator and
// returns the trimmed requirement and marker text. The marker is empty when
// there is none. URLs may contain ';', so in a direct reference
// ("name @ url") the separator must be preceded by whitespace.
func SplitMarker(s string) (req, marker string) {
	i := strings.IndexByte(s, ';')
	if at := strings.IndexByte(s, '@'); at >= 0 && (i < 0 || at < i) {
		i = -1
		if j := strings.Index(s[at:], " ;"); j >= 0 {
			i = at + j + 1
		}
	}
	if i < 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
}

// AddCondition joins cond to the marker of requirement s with "and",
// parenthesizing an existing marker. The result keeps whitespace before ';'
// for direct references so it round-trips through [ParseRequirement].
func AddCondition(s, cond string) string {
	req, marker := SplitMarker(s)
	if marker != "" {
		cond = fmt.Sprintf("(%s) and %s", marker, cond)
	}
	if strings.Contains(req, "@") {
		return req + " ; " + cond
	}
	return req + "; " + cond
}

// normalizeSpecifier strips the optional parentheses and whitespace of a
// version specifier: "(>= 1.0, < 2)" becomes ">=1.0,<2".
func normalizeSpecifier(spec string) string {
	spec = strings.TrimSpace(spec)
	if strings.HasPrefix(spec, "(") && strings.HasSuffix(spec, ")") {
		spec = spec[1 : len(spec)-1]
	}
	return strings.Join(strings.Fields(spec), "")
}

// GatingExtras returns the normalized extras this requirement is conditioned
// on, or nil when it applies regardless of which extras are requested.
func (r *Requirement) GatingExtras() []string {
	if r.Marker == nil {
		return nil
	}
	return r.Marker.Extras()
}

// String formats the requirement back into PEP 508 form.
func (r *Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		fmt.Fprintf(&b, "[%s]", strings.Join(r.Extras, ","))
	}
	switch {
	case r.URL != "":
		fmt.Fprintf(&b, " @ %s", r.URL)
		if r.Marker != nil {
			b.WriteString(" ")
		}
	case r.Specifier != "":
		b.WriteString(r.Specifier)
	}
	if r.Marker != nil {
		fmt.Fprintf(&b, "; %s", r.Marker)
	}
	return b.String()
}
