package extras

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/chextra/pkg/cache"
	"github.com/matzehuels/chextra/pkg/errors"
	"github.com/matzehuels/chextra/pkg/metadata"
	"github.com/matzehuels/chextra/pkg/observability"
)

// fakeSource serves distributions from memory and counts lookups.
type fakeSource struct {
	dists          map[string]*metadata.Distribution
	installed      []string
	lookups        int
	installedCalls int
}

func (f *fakeSource) Distribution(_ context.Context, name string) (*metadata.Distribution, error) {
	f.lookups++
	if d, ok := f.dists[name]; ok {
		return d, nil
	}
	return nil, errors.New(errors.ErrCodePackageNotFound, "no distribution named %s", name)
}

func (f *fakeSource) Installed(context.Context) (metadata.InstalledSet, error) {
	f.installedCalls++
	return metadata.NewInstalledSet(f.installed...), nil
}

func pkgnameSource(installed ...string) *fakeSource {
	return &fakeSource{
		dists: map[string]*metadata.Distribution{
			"pkgname": {
				Name: "pkgname",
				RequiresDist: []string{
					"requests",
					`matplotlib; extra == "viz"`,
					`click; extra == "cli"`,
					`rich; extra == "cli" or extra == "viz"`,
				},
				ProvidesExtra: []string{"viz", "cli"},
			},
		},
		installed: append([]string{"pkgname", "requests"}, installed...),
	}
}

func TestWarnMissingExtra(t *testing.T) {
	rec := &Recorder{}
	c := NewChecker(pkgnameSource("rich"), nil, rec)

	if err := c.Warn(context.Background(), Request{Package: "pkgname", Extras: []string{"viz"}}); err != nil {
		t.Fatalf("Warn error: %v", err)
	}

	diags := rec.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	d := diags[0]
	if d.Kind != KindMissingExtra {
		t.Errorf("Kind = %s, want %s", d.Kind, KindMissingExtra)
	}
	if !strings.Contains(d.Message, "pkgname[viz]") {
		t.Errorf("Message %q should mention pkgname[viz]", d.Message)
	}
	if d.InstallHint() != "pkgname[viz]" {
		t.Errorf("InstallHint() = %q", d.InstallHint())
	}
	if !reflect.DeepEqual(d.Missing, []string{"matplotlib"}) {
		t.Errorf("Missing = %v, want [matplotlib]", d.Missing)
	}
}

func TestWarnEager(t *testing.T) {
	rec := &Recorder{}
	c := NewChecker(pkgnameSource(), nil, rec)

	err := c.Warn(context.Background(), Request{Package: "pkgname", Extras: []string{"viz", "cli"}, Eager: true})
	var missing *errors.MissingDependenciesError
	if !errors.As(err, &missing) {
		t.Fatalf("Warn error = %v, want MissingDependenciesError", err)
	}
	if want := []string{"matplotlib", "rich", "click"}; !reflect.DeepEqual(missing.Missing, want) {
		t.Errorf("Missing = %v, want %v", missing.Missing, want)
	}
	if !strings.Contains(err.Error(), "matplotlib") {
		t.Errorf("error %q should name matplotlib", err)
	}
	if n := len(rec.Diagnostics()); n != 2 {
		t.Errorf("got %d diagnostics, want one per extra", n)
	}
}

func TestWarnAllInstalled(t *testing.T) {
	rec := &Recorder{}
	c := NewChecker(pkgnameSource("matplotlib", "rich"), nil, rec)

	for _, eager := range []bool{false, true} {
		if err := c.Warn(context.Background(), Request{Package: "pkgname", Extras: []string{"viz"}, Eager: eager}); err != nil {
			t.Errorf("Warn(eager=%v) error: %v", eager, err)
		}
	}
	if diags := rec.Diagnostics(); len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", diags)
	}
}

func TestWarnUnresolvableExtra(t *testing.T) {
	for _, eager := range []bool{false, true} {
		c := NewChecker(pkgnameSource(), nil, nil)
		err := c.Warn(context.Background(), Request{Package: "pkgname", Extras: []string{"GUI"}, Eager: eager})

		var unresolvable *errors.UnresolvableExtraError
		if !errors.As(err, &unresolvable) {
			t.Fatalf("eager=%v: error = %v, want UnresolvableExtraError", eager, err)
		}
		if unresolvable.Extra != "gui" {
			t.Errorf("Extra = %q, want normalized gui", unresolvable.Extra)
		}
		if want := []string{"viz", "cli"}; !reflect.DeepEqual(unresolvable.Valid, want) {
			t.Errorf("Valid = %v, want %v", unresolvable.Valid, want)
		}
	}
}

func TestWarnPackageNotFound(t *testing.T) {
	c := NewChecker(pkgnameSource(), nil, nil)
	err := c.Warn(context.Background(), Request{Package: "nope", Extras: []string{"viz"}})
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodePackageNotFound)
	}
}

func TestWarnNormalizesRequestedExtras(t *testing.T) {
	src := &fakeSource{
		dists: map[string]*metadata.Distribution{
			"acme": {
				Name:          "acme",
				RequiresDist:  []string{`rich; extra == "My-Extra" or extra == "my_extra"`},
				ProvidesExtra: []string{"My_Extra"},
			},
		},
	}
	rec := &Recorder{}
	c := NewChecker(src, nil, rec)
	if err := c.Warn(context.Background(), Request{Package: "acme", Extras: []string{"MY.EXTRA"}}); err != nil {
		t.Fatal(err)
	}
	diags := rec.Diagnostics()
	if len(diags) != 1 || diags[0].Extra != "my-extra" || !reflect.DeepEqual(diags[0].Missing, []string{"rich"}) {
		t.Errorf("diagnostics = %+v", diags)
	}
}

func TestWarnFromCaller(t *testing.T) {
	explicit := &Recorder{}
	implicit := &Recorder{}
	src := &fakeSource{
		dists: map[string]*metadata.Distribution{
			"acme": {
				Name:          "acme",
				RequiresDist:  []string{`plotly; extra == "viz"`},
				ProvidesExtra: []string{"viz"},
			},
		},
	}

	ctx := context.Background()
	if err := NewChecker(src, nil, explicit).Warn(ctx, Request{Package: "acme", Extras: []string{"viz"}}); err != nil {
		t.Fatal(err)
	}
	if err := NewChecker(src, nil, implicit).Warn(ctx, Request{Caller: []string{"acme", "viz"}}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(explicit.Diagnostics(), implicit.Diagnostics()) {
		t.Errorf("caller-derived check differs:\n explicit %+v\n implicit %+v", explicit.Diagnostics(), implicit.Diagnostics())
	}
}

func TestWarnCallerDefaultsOnlyFillGaps(t *testing.T) {
	rec := &Recorder{}
	c := NewChecker(pkgnameSource(), nil, rec)
	req := Request{Package: "pkgname", Caller: []string{"other", "cli"}}
	if err := c.Warn(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	diags := rec.Diagnostics()
	if len(diags) != 1 || diags[0].Package != "pkgname" || diags[0].Extra != "cli" {
		t.Errorf("diagnostics = %+v", diags)
	}
}

func TestWarnCannotGuess(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"nothing", Request{}},
		{"go main", Request{Caller: []string{"main"}}},
		{"python main", Request{Caller: []string{"__main__"}}},
		{"package only", Request{Package: "pkgname"}},
		{"extras only", Request{Extras: []string{"viz"}}},
		{"explicit main", Request{Package: "main", Extras: []string{"viz"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := pkgnameSource()
			rec := &Recorder{}
			if err := NewChecker(src, nil, rec).Warn(context.Background(), tt.req); err != nil {
				t.Fatalf("Warn error: %v", err)
			}
			diags := rec.Diagnostics()
			if len(diags) != 1 || diags[0].Kind != KindCannotGuess {
				t.Errorf("diagnostics = %+v, want one %s", diags, KindCannotGuess)
			}
			if src.lookups != 0 || src.installedCalls != 0 {
				t.Errorf("source touched: lookups=%d installed=%d", src.lookups, src.installedCalls)
			}
		})
	}
}

func TestWarnMemoizesGroups(t *testing.T) {
	src := pkgnameSource()
	c := NewChecker(src, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.Warn(ctx, Request{Package: "pkgname", Extras: []string{"viz"}}); err != nil {
			t.Fatal(err)
		}
	}
	// A differently spelled name shares the entry.
	if err := c.Warn(ctx, Request{Package: "PkgName", Extras: []string{"viz"}}); err != nil {
		t.Fatal(err)
	}
	if src.lookups != 1 {
		t.Errorf("metadata looked up %d times, want 1", src.lookups)
	}
	if src.installedCalls != 4 {
		t.Errorf("installed set read %d times, want fresh on every call", src.installedCalls)
	}
}

func TestWarnWithoutMemoization(t *testing.T) {
	src := pkgnameSource()
	c := NewChecker(src, cache.Null[Groups]{}, nil)
	for i := 0; i < 2; i++ {
		if err := c.Warn(context.Background(), Request{Package: "pkgname", Extras: []string{"viz"}}); err != nil {
			t.Fatal(err)
		}
	}
	if src.lookups != 2 {
		t.Errorf("metadata looked up %d times, want 2", src.lookups)
	}
}

type recordingHooks struct {
	hits, misses, checks, missing int
	lastErr                       error
}

func (h *recordingHooks) OnCacheHit(context.Context, string)             { h.hits++ }
func (h *recordingHooks) OnCacheMiss(context.Context, string)            { h.misses++ }
func (h *recordingHooks) OnCheckStart(context.Context, string, []string) {}
func (h *recordingHooks) OnCheckComplete(_ context.Context, _ string, _ []string, missing int, _ time.Duration, err error) {
	h.checks++
	h.missing += missing
	h.lastErr = err
}

func TestWarnEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetCacheHooks(hooks)
	observability.SetCheckHooks(hooks)

	c := NewChecker(pkgnameSource(), nil, nil)
	ctx := context.Background()
	_ = c.Warn(ctx, Request{Package: "pkgname", Extras: []string{"viz"}})
	err := c.Warn(ctx, Request{Package: "pkgname", Extras: []string{"viz"}, Eager: true})

	if hooks.misses != 1 || hooks.hits != 1 {
		t.Errorf("cache hooks: misses=%d hits=%d, want 1 and 1", hooks.misses, hooks.hits)
	}
	if hooks.checks != 2 || hooks.missing != 4 {
		t.Errorf("check hooks: checks=%d missing=%d, want 2 and 4", hooks.checks, hooks.missing)
	}
	if hooks.lastErr != err {
		t.Errorf("OnCheckComplete err = %v, want %v", hooks.lastErr, err)
	}
}

func TestWarnAgainstEnvironment(t *testing.T) {
	site := t.TempDir()
	write := func(stem, content string) {
		dir := filepath.Join(site, stem+".dist-info")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "METADATA"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("pkgname-1.0", "Metadata-Version: 2.1\nName: pkgname\nVersion: 1.0\n"+
		"Requires-Dist: matplotlib; extra == 'viz'\nProvides-Extra: viz\n\n")

	env := metadata.NewEnvironment(site)
	rec := &Recorder{}
	c := NewChecker(env, nil, rec)
	ctx := context.Background()

	if err := c.Warn(ctx, Request{Package: "pkgname", Extras: []string{"viz"}}); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.Diagnostics()); n != 1 {
		t.Fatalf("got %d diagnostics before install, want 1", n)
	}

	// Installing the dependency is picked up without a new checker.
	write("matplotlib-3.8.0", "Metadata-Version: 2.1\nName: matplotlib\nVersion: 3.8.0\n\n")
	if err := c.Warn(ctx, Request{Package: "pkgname", Extras: []string{"viz"}, Eager: true}); err != nil {
		t.Errorf("Warn after install error: %v", err)
	}
	if n := len(rec.Diagnostics()); n != 1 {
		t.Errorf("got %d diagnostics after install, want still 1", n)
	}
}

func TestWarnEggInfoRequiresTxt(t *testing.T) {
	site := t.TempDir()
	eggDir := filepath.Join(site, "acme.egg-info")
	if err := os.MkdirAll(eggDir, 0755); err != nil {
		t.Fatal(err)
	}
	pkgInfo := "Metadata-Version: 2.1\nName: acme\nVersion: 0.1\nProvides-Extra: viz\n\n"
	if err := os.WriteFile(filepath.Join(eggDir, "PKG-INFO"), []byte(pkgInfo), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(eggDir, "requires.txt"), []byte("[viz]\nmatplotlib\n"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := &Recorder{}
	c := NewChecker(metadata.NewEnvironment(site), nil, rec)
	err := c.Warn(context.Background(), Request{Package: "acme", Extras: []string{"viz"}, Eager: true})

	var missing *errors.MissingDependenciesError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingDependenciesError", err)
	}
	if !reflect.DeepEqual(missing.Missing, []string{"matplotlib"}) {
		t.Errorf("Missing = %v, want [matplotlib]", missing.Missing)
	}
	if n := len(rec.Diagnostics()); n != 1 {
		t.Errorf("got %d diagnostics, want 1", n)
	}
}
