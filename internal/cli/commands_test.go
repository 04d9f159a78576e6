package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/chextra/pkg/errors"
)

const acmeMetadata = `Metadata-Version: 2.1
Name: acme
Version: 1.0
Requires-Dist: requests
Requires-Dist: numpy; extra == "viz"
Requires-Dist: rich; extra == "cli"
Provides-Extra: viz
Provides-Extra: cli

`

// writeDistInfo creates <dir>/<stem>.dist-info/METADATA.
func writeDistInfo(t *testing.T, dir, stem, content string) {
	t.Helper()
	infoDir := filepath.Join(dir, stem+".dist-info")
	if err := os.MkdirAll(infoDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(infoDir, "METADATA"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// newSite returns a site-packages directory with acme and the given
// distributions installed.
func newSite(t *testing.T, installed ...string) string {
	t.Helper()
	site := t.TempDir()
	writeDistInfo(t, site, "acme-1.0", acmeMetadata)
	for _, name := range installed {
		writeDistInfo(t, site, name+"-1.0", "Metadata-Version: 2.1\nName: "+name+"\nVersion: 1.0\n\n")
	}
	return site
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CHEXTRA_PATH", "")
	t.Setenv("VIRTUAL_ENV", "")

	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWarnCommand(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		args      []string
		wantOut   []string
		wantCode  errors.Code
	}{
		{
			name:      "all installed",
			installed: []string{"requests", "numpy"},
			args:      []string{"warn", "acme", "viz"},
			wantOut:   []string{"All requested extras are installed"},
		},
		{
			name:      "missing extra warns",
			installed: []string{"requests"},
			args:      []string{"warn", "acme", "viz"},
			wantOut:   []string{"acme[viz]", "numpy", "pip install acme[viz]"},
		},
		{
			name:      "eager fails",
			installed: []string{"requests"},
			args:      []string{"warn", "acme", "viz", "cli", "--eager"},
			wantOut:   []string{"acme[viz]", "acme[cli]"},
			wantCode:  errors.ErrCodeMissingDependencies,
		},
		{
			name:      "guessed from module",
			installed: []string{"requests"},
			args:      []string{"warn", "--module", "acme.viz"},
			wantOut:   []string{"pip install acme[viz]"},
		},
		{
			name:    "cannot guess",
			args:    []string{"warn"},
			wantOut: []string{"can't guess the package or extras"},
		},
		{
			name:     "undeclared extra",
			args:     []string{"warn", "acme", "gui"},
			wantCode: errors.ErrCodeUnresolvableExtra,
		},
		{
			name:     "unknown package",
			args:     []string{"warn", "nope", "viz"},
			wantCode: errors.ErrCodePackageNotFound,
		},
		{
			name:     "invalid package name",
			args:     []string{"warn", "bad!name", "viz"},
			wantCode: errors.ErrCodeInvalidPackage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newSite(t, tt.installed...)
			out, err := execute(t, append([]string{"--path", site}, tt.args...)...)

			if tt.wantCode == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantCode != "" && !errors.Is(err, tt.wantCode) {
				t.Fatalf("error = %v, want %s", err, tt.wantCode)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(out, want) {
					t.Errorf("output %q should contain %q", out, want)
				}
			}
		})
	}
}

func TestWarnCommandEagerFromConfig(t *testing.T) {
	site := newSite(t, "requests")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("eager = true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "--path", site, "--config", cfgPath, "warn", "acme", "viz")
	if !errors.Is(err, errors.ErrCodeMissingDependencies) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeMissingDependencies)
	}

	_, err = execute(t, "--path", site, "--config", cfgPath, "warn", "acme", "viz", "--eager=false")
	if err != nil {
		t.Fatalf("--eager=false should override the config: %v", err)
	}
}

func TestExtrasCommand(t *testing.T) {
	site := newSite(t)

	out, err := execute(t, "--path", site, "extras", "acme")
	if err != nil {
		t.Fatalf("extras: %v", err)
	}
	for _, want := range []string{"acme", "(required)", "requests", "viz", "numpy", "cli", "rich"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}
}

func TestExtrasCommandJSON(t *testing.T) {
	site := newSite(t)

	out, err := execute(t, "--path", site, "extras", "acme", "--json")
	if err != nil {
		t.Fatalf("extras --json: %v", err)
	}
	var got map[string][]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := map[string][]string{
		"":    {"requests"},
		"viz": {"numpy"},
		"cli": {"rich"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("groups = %v, want %v", got, want)
	}
}

func TestExtrasCommandProject(t *testing.T) {
	site := newSite(t)
	project := t.TempDir()
	pyproject := `[project]
name = "acme"
version = "2.0.dev0"
dependencies = ["requests"]

[project.optional-dependencies]
viz = ["numpy", "pandas"]
`
	if err := os.WriteFile(filepath.Join(project, "pyproject.toml"), []byte(pyproject), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--path", site, "--project", project, "extras", "acme", "--json")
	if err != nil {
		t.Fatalf("extras: %v", err)
	}
	var got map[string][]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if !reflect.DeepEqual(got["viz"], []string{"numpy", "pandas"}) {
		t.Errorf("viz = %v, want the pyproject.toml dependencies", got["viz"])
	}
	if _, ok := got["cli"]; ok {
		t.Error("installed metadata should be shadowed by the project")
	}
}

func TestInstalledCommand(t *testing.T) {
	site := newSite(t, "Zope.Interface", "numpy")

	out, err := execute(t, "--path", site, "installed")
	if err != nil {
		t.Fatalf("installed: %v", err)
	}
	got := strings.Fields(out)
	want := []string{"acme", "numpy", "zope-interface"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("installed = %v, want %v", got, want)
	}
}

func TestInstalledCommandVersions(t *testing.T) {
	site := newSite(t, "Zope.Interface", "numpy")
	// shadowed by the first path
	other := t.TempDir()
	writeDistInfo(t, other, "numpy-0.9", "Metadata-Version: 2.1\nName: numpy\nVersion: 0.9\n\n")

	out, err := execute(t, "--path", site, "--path", other, "installed", "--versions")
	if err != nil {
		t.Fatalf("installed --versions: %v", err)
	}
	want := "acme 1.0\nnumpy 1.0\nzope-interface 1.0\n"
	if out != want {
		t.Errorf("installed --versions = %q, want %q", out, want)
	}
}

func TestInstalledCommandRejectsArgs(t *testing.T) {
	if _, err := execute(t, "installed", "extra"); err == nil {
		t.Error("expected an error for unexpected arguments")
	}
}
