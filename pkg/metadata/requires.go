package metadata

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/pep508"
)

// requiresFile holds the requirements of a setuptools egg-info directory.
const requiresFile = "requires.txt"

// ParseRequiresTxt converts a setuptools requires.txt into Requires-Dist
// entries. Requirements before the first section are unconditional. A
// section header gates the lines below it:
//
//	[viz]                       extra == "viz"
//	[viz:sys_platform=="win32"] (sys_platform=="win32") and extra == "viz"
//	[:python_version<"3.11"]    python_version<"3.11"
//
// It also returns the extras named by section headers, in order.
func ParseRequiresTxt(r io.Reader) (reqs, extras []string, err error) {
	var cond string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "["):
			if !strings.HasSuffix(line, "]") {
				return nil, nil, errors.New(errors.ErrCodeInvalidInput, "malformed section %q in %s", line, requiresFile)
			}
			extra, marker, _ := strings.Cut(line[1:len(line)-1], ":")
			extra, marker = strings.TrimSpace(extra), strings.TrimSpace(marker)
			cond = sectionCondition(extra, marker)
			if extra != "" {
				extras = append(extras, extra)
			}
		case cond == "":
			reqs = append(reqs, line)
		default:
			reqs = append(reqs, pep508.AddCondition(line, cond))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", requiresFile)
	}
	return reqs, extras, nil
}

func sectionCondition(extra, marker string) string {
	switch {
	case extra == "":
		return marker
	case marker == "":
		return fmt.Sprintf("extra == %q", extra)
	default:
		return fmt.Sprintf("(%s) and extra == %q", marker, extra)
	}
}

// addRequires fills d from a requires.txt when its core metadata lists no
// requirements. Extras named only by sections are added to ProvidesExtra.
func addRequires(d *Distribution, r io.Reader) error {
	reqs, extras, err := ParseRequiresTxt(r)
	if err != nil {
		return err
	}
	d.RequiresDist = reqs

	declared := make(map[string]bool, len(d.ProvidesExtra))
	for _, e := range d.ProvidesExtra {
		declared[pep508.NormalizeExtra(e)] = true
	}
	for _, e := range extras {
		if key := pep508.NormalizeExtra(e); !declared[key] {
			declared[key] = true
			d.ProvidesExtra = append(d.ProvidesExtra, e)
		}
	}
	return nil
}
