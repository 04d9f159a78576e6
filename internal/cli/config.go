package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/chextra/pkg/errors"
)

// configFile is the default config file name inside configDir.
const configFile = "config.toml"

// Config holds settings read from the TOML config file. Flags override every
// field.
//
//	paths = ["/opt/venv/lib/python3.12/site-packages"]
//	project = "."
//	eager = false
type Config struct {
	Paths   []string `toml:"paths"`   // site-packages directories
	Project string   `toml:"project"` // source tree with a pyproject.toml
	Eager   bool     `toml:"eager"`   // default for warn --eager
}

// loadConfig reads the config file at path. An empty path selects the
// default location, which may be absent; an explicit path must exist.
// Relative paths in the file are resolved against the file's directory.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, configFile)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return &Config{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}

	base := filepath.Dir(path)
	for i, p := range cfg.Paths {
		cfg.Paths[i] = resolvePath(base, p)
	}
	if cfg.Project != "" {
		cfg.Project = resolvePath(base, cfg.Project)
	}
	return &cfg, nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
