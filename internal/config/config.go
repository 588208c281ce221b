// Package config defines the command line and configuration file, and turns
// them into watch targets.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/lumipallolabs/dirwatch/internal/core"
	"github.com/lumipallolabs/dirwatch/internal/format"
	"github.com/lumipallolabs/dirwatch/internal/sink"
)

// MinBufferSize is the smallest accepted notification buffer
const MinBufferSize = 64

// Config holds every setting. Flags are named the same in the YAML file.
type Config struct {
	Paths []string `arg:"" optional:"" name:"path" help:"Directories to watch (default: current directory)."`

	Recursive bool   `short:"r" help:"Watch subdirectories too."`
	Dump      bool   `short:"d" help:"Print the content of modified files."`
	OneLine   bool   `name:"oneline" short:"o" help:"Print one line per event."`
	Match     string `short:"m" placeholder:"REGEX" help:"Only report paths matching this pattern."`
	Exclude   string `short:"e" placeholder:"REGEX" help:"Do not report paths matching this pattern."`
	LogFile   string `name:"log-file" short:"l" placeholder:"PATH" env:"DIRWATCH_LOG_FILE" help:"Append events to this file instead of standard output."`

	Encoding   string `default:"shift_jis" help:"Text encoding of dumped files."`
	BufferSize int    `name:"buffer-size" default:"2048" help:"Notification buffer size in bytes."`
	Color      string `enum:"auto,always,never" default:"auto" help:"Colour markers on the terminal (auto, always, never)."`

	TUI           bool   `name:"tui" help:"Show events in a live terminal view."`
	MetricsListen string `name:"metrics-listen" placeholder:"ADDR" help:"Serve Prometheus metrics on this address."`
	Debug         bool   `env:"DIRWATCH_DEBUG" help:"Write diagnostics to dirwatch-debug.log."`

	ConfigFile   kong.ConfigFlag  `name:"config" placeholder:"PATH" help:"Load settings from a YAML file."`
	Version      kong.VersionFlag `short:"V" help:"Print the version and exit."`
	DefaultPaths []string         `name:"paths" hidden:"" help:"Directories to watch when none are given."`
}

// Validate checks settings that kong cannot check by itself
func (c *Config) Validate() error {
	if c.BufferSize < MinBufferSize {
		return fmt.Errorf("--buffer-size must be at least %d", MinBufferSize)
	}
	if _, err := format.LookupEncoding(c.Encoding); err != nil {
		return err
	}
	if _, err := core.NewFilter(c.Match, c.Exclude); err != nil {
		return err
	}
	if c.TUI && c.LogFile != "" {
		return fmt.Errorf("--tui and --log-file cannot be combined")
	}
	return nil
}

// Roots returns the absolute watch roots in the order given
func (c *Config) Roots() ([]string, error) {
	paths := c.Paths
	if len(paths) == 0 {
		paths = c.DefaultPaths
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(expandHome(p))
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		roots = append(roots, abs)
	}
	return roots, nil
}

// Targets builds one watch target per root
func (c *Config) Targets() ([]core.Target, error) {
	roots, err := c.Roots()
	if err != nil {
		return nil, err
	}
	filter, err := core.NewFilter(c.Match, c.Exclude)
	if err != nil {
		return nil, err
	}
	enc, err := format.LookupEncoding(c.Encoding)
	if err != nil {
		return nil, err
	}

	opts := format.Options{OneLine: c.OneLine, Dump: c.Dump, Encoding: enc}
	targets := make([]core.Target, 0, len(roots))
	for _, root := range roots {
		targets = append(targets, core.Target{
			Root:       root,
			Recursive:  c.Recursive,
			BufferSize: c.BufferSize,
			Filter:     filter,
			Format:     opts,
		})
	}
	return targets, nil
}

// ColorMode returns the terminal colour setting
func (c *Config) ColorMode() sink.ColorMode {
	return sink.ColorMode(c.Color)
}

// SearchPaths returns the configuration files loaded when present, most
// specific first.
func SearchPaths() []string {
	var paths []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "dirwatch", "config.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "dirwatch", "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".dirwatch.yaml"))
	}
	return paths
}

// Options returns the kong options for the dirwatch command line
func Options() []kong.Option {
	return []kong.Option{
		kong.Name("dirwatch"),
		kong.Description("Watch directories and log every change below them."),
		kong.UsageOnError(),
		kong.Configuration(YAML, SearchPaths()...),
	}
}

func expandHome(p string) string {
	if p != "~" && !hasHomePrefix(p) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}

func hasHomePrefix(p string) bool {
	return len(p) >= 2 && p[0] == '~' && (p[1] == '/' || p[1] == filepath.Separator)
}
