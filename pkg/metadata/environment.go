package metadata

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/pep508"
)

// PathEnv names the environment variable holding the default search path,
// a list of site-packages directories separated by [os.PathListSeparator].
const PathEnv = "CHEXTRA_PATH"

const (
	distInfoSuffix = ".dist-info"
	eggInfoSuffix  = ".egg-info"
)

// Environment finds distributions installed in a list of site-packages
// directories. Earlier paths shadow later ones, mirroring sys.path.
//
// The zero value has no search path and therefore finds nothing.
type Environment struct {
	Paths  []string
	Logger *log.Logger // optional; debug output about skipped entries
}

// NewEnvironment creates an Environment searching the given directories.
func NewEnvironment(paths ...string) *Environment {
	return &Environment{Paths: paths}
}

// DefaultPaths returns the search path used when none is configured:
// the entries of $CHEXTRA_PATH if set, otherwise the site-packages
// directories of the active virtualenv ($VIRTUAL_ENV).
func DefaultPaths() []string {
	if v := os.Getenv(PathEnv); v != "" {
		return filepath.SplitList(v)
	}
	venv := os.Getenv("VIRTUAL_ENV")
	if venv == "" {
		return nil
	}
	var paths []string
	for _, pattern := range []string{
		filepath.Join(venv, "lib", "python3*", "site-packages"),
		filepath.Join(venv, "Lib", "site-packages"),
	} {
		matches, _ := filepath.Glob(pattern)
		paths = append(paths, matches...)
	}
	return paths
}

// entry is a metadata location found while scanning a directory.
type entry struct {
	prefix string // normalized distribution name guessed from the file name
	path   string // path to the METADATA/PKG-INFO file
}

// Distribution returns the first distribution on the search path whose
// declared name matches name after normalization. Directory names only
// preselect candidates; the Name field of the metadata decides. Names no
// installer could produce are reported as not found.
func (e *Environment) Distribution(ctx context.Context, name string) (*Distribution, error) {
	if errors.ValidatePackageName(name) != nil {
		return nil, notFound(name)
	}
	want := pep508.NormalizeName(name)
	for _, dir := range e.Paths {
		entries, err := e.scan(ctx, dir)
		if err != nil {
			return nil, err
		}
		for _, ent := range entries {
			if ent.prefix != want && !strings.HasPrefix(want, ent.prefix+"-") {
				continue
			}
			d, err := e.read(ent.path)
			if err != nil || pep508.NormalizeName(d.Name) != want {
				continue
			}
			return d, nil
		}
	}
	return nil, notFound(name)
}

// Installed returns the names of every readable distribution on the search
// path. Directories are scanned concurrently. Entries with unreadable
// metadata fall back to the name encoded in their directory name.
func (e *Environment) Installed(ctx context.Context) (InstalledSet, error) {
	parts := make([]InstalledSet, len(e.Paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, dir := range e.Paths {
		i, dir := i, dir
		g.Go(func() error {
			entries, err := e.scan(ctx, dir)
			if err != nil {
				return err
			}
			part := make(InstalledSet, len(entries))
			for _, ent := range entries {
				if d, err := e.read(ent.path); err == nil {
					part.Add(d.Name)
				} else {
					part.Add(ent.prefix)
				}
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := make(InstalledSet)
	for _, part := range parts {
		for name := range part {
			set[name] = struct{}{}
		}
	}
	return set, nil
}

// Distributions returns the metadata of every distribution on the search
// path, skipping shadowed duplicates and unreadable entries.
func (e *Environment) Distributions(ctx context.Context) ([]*Distribution, error) {
	seen := make(map[string]bool)
	var out []*Distribution
	for _, dir := range e.Paths {
		entries, err := e.scan(ctx, dir)
		if err != nil {
			return nil, err
		}
		for _, ent := range entries {
			d, err := e.read(ent.path)
			if err != nil {
				continue
			}
			key := pep508.NormalizeName(d.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, d)
		}
	}
	return out, nil
}

// scan lists the metadata entries of a single directory. Missing directories
// are skipped, since search paths commonly include optional locations.
func (e *Environment) scan(ctx context.Context, dir string) ([]entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		e.logger().Debug("skipping missing search path", "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read search path %s", dir)
	}

	var entries []entry
	for _, item := range items {
		name := item.Name()
		var path string
		switch {
		case strings.HasSuffix(name, distInfoSuffix) && item.IsDir():
			path = filepath.Join(dir, name, "METADATA")
			name = strings.TrimSuffix(name, distInfoSuffix)
		case strings.HasSuffix(name, eggInfoSuffix):
			path = filepath.Join(dir, name)
			if item.IsDir() {
				path = filepath.Join(path, "PKG-INFO")
			}
			name = strings.TrimSuffix(name, eggInfoSuffix)
		default:
			continue
		}
		entries = append(entries, entry{prefix: distPrefix(name), path: path})
	}
	return entries, nil
}

// distPrefix extracts the normalized distribution name from a metadata
// directory stem such as "My_Package-1.0" or "my_package-1.0-py3.11".
// Dashes inside names are escaped to underscores by installers, so the name
// ends at the first dash.
func distPrefix(stem string) string {
	if i := strings.IndexByte(stem, '-'); i >= 0 {
		stem = stem[:i]
	}
	return pep508.NormalizeName(stem)
}

func (e *Environment) read(path string) (*Distribution, error) {
	f, err := os.Open(path)
	if err != nil {
		e.logger().Debug("unreadable metadata", "path", path, "err", err)
		return nil, err
	}
	defer f.Close()

	d, err := ParseCoreMetadata(f)
	if err != nil {
		e.logger().Debug("invalid metadata", "path", path, "err", err)
		return nil, err
	}
	d.Path = path

	if len(d.RequiresDist) == 0 && filepath.Base(path) == "PKG-INFO" {
		e.readRequires(d, filepath.Join(filepath.Dir(path), requiresFile))
	}
	return d, nil
}

// readRequires loads the requires.txt of an egg-info directory, if any.
// Legacy installers keep requirements there instead of in PKG-INFO.
func (e *Environment) readRequires(d *Distribution, path string) {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			e.logger().Debug("unreadable requirements", "path", path, "err", err)
		}
		return
	}
	defer f.Close()

	if err := addRequires(d, f); err != nil {
		e.logger().Warn("ignoring invalid requirements", "path", path, "err", err)
	}
}

func (e *Environment) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

var _ Source = (*Environment)(nil)
