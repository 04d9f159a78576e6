// Package cli implements the chextra command-line interface.
//
// The CLI is built with cobra and logs through charmbracelet/log. Every
// command inspects one Python environment, described by the global flags:
//
//   - --path: site-packages directories to search (repeatable)
//   - --project: a source tree whose pyproject.toml is consulted first
//   - --config: a TOML config file (default: $XDG_CONFIG_HOME/chextra/config.toml)
//
// Without --path or a configured search path, $CHEXTRA_PATH and then the
// active virtualenv are used.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chextra/pkg/buildinfo"
	"github.com/matzehuels/chextra/pkg/metadata"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "chextra"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	paths      []string // --path
	project    string   // --project
	configPath string   // --config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "chextra checks that the extras your code needs are installed",
		Long: `chextra inspects the installation metadata of a Python distribution, groups its
dependencies by extra, and warns when an extra's dependencies are not installed.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringArrayVar(&c.paths, "path", nil, "site-packages directory to search (repeatable)")
	flags.StringVar(&c.project, "project", "", "source tree whose pyproject.toml is checked first")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/chextra/config.toml)")

	root.AddCommand(c.warnCommand())
	root.AddCommand(c.extrasCommand())
	root.AddCommand(c.installedCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Environment Factory
// =============================================================================

// environment describes the Python environment selected by flags and config.
type environment struct {
	source metadata.Source       // project (if any) chained before site
	site   *metadata.Environment // installed distributions only
	paths  []string
	config *Config
}

// newEnvironment resolves the search path with precedence
// flags > config file > metadata.DefaultPaths.
func (c *CLI) newEnvironment() (*environment, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return nil, err
	}

	paths := c.paths
	if len(paths) == 0 {
		paths = cfg.Paths
	}
	if len(paths) == 0 {
		paths = metadata.DefaultPaths()
	}
	if len(paths) == 0 {
		c.Logger.Warn("No search path configured; use --path, $" + metadata.PathEnv + " or activate a virtualenv")
	}

	env := &metadata.Environment{Paths: paths, Logger: c.Logger}
	var src metadata.Source = env

	project := c.project
	if project == "" {
		project = cfg.Project
	}
	if project != "" {
		src = metadata.Multi{&metadata.Project{Dir: project}, env}
	}

	c.Logger.Debug("Resolved environment", "paths", paths, "project", project)
	return &environment{source: src, site: env, paths: paths, config: cfg}, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/chextra/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
