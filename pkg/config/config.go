// Package config handles loading and saving stageboard configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/stageboard/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/stageboard/pkg/board"
	"github.com/vanderheijden86/stageboard/pkg/viewmodel"

	"gopkg.in/yaml.v3"
)

const appName = "stageboard"

// Source is a named snapshot location.
type Source struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ViewportConfig is the assumed viewport for headless renders.
type ViewportConfig struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// BoardConfig tunes the builder and the render layer.
type BoardConfig struct {
	Progress     board.ProgressBar `yaml:"progress"`
	ProgressMode string            `yaml:"progress_mode,omitempty"` // fixed, share
	Duplicates   string            `yaml:"duplicates,omitempty"`    // suffix, reject, last
	Connectors   *bool             `yaml:"connectors,omitempty"`
	Viewport     ViewportConfig    `yaml:"viewport,omitempty"`
}

// SourceConfig says where snapshots come from when no path is given.
type SourceConfig struct {
	Path    string `yaml:"path,omitempty"`    // file to load; wins over Dir
	Dir     string `yaml:"dir,omitempty"`     // directory scanned for the freshest source
	Default string `yaml:"default,omitempty"` // name of an entry in Sources
}

// ServerConfig holds web host settings.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// UIConfig holds terminal host preferences.
type UIConfig struct {
	Mouse     *bool `yaml:"mouse,omitempty"`
	AltScreen *bool `yaml:"alt_screen,omitempty"`
	Watch     *bool `yaml:"watch,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Sources []Source     `yaml:"sources,omitempty"`
	Board   BoardConfig  `yaml:"board"`
	Source  SourceConfig `yaml:"source,omitempty"`
	Server  ServerConfig `yaml:"server,omitempty"`
	UI      UIConfig     `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Board: BoardConfig{
			Progress:     board.DefaultProgress,
			ProgressMode: string(board.ProgressFixed),
			Duplicates:   string(viewmodel.DuplicateSuffix),
			Viewport:     ViewportConfig{Width: board.DefaultViewport.Width, Height: board.DefaultViewport.Height},
		},
		Server: ServerConfig{
			Addr: "127.0.0.1",
			Port: 8585,
		},
	}
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	for i := range cfg.Sources {
		cfg.Sources[i].Path = expandHome(cfg.Sources[i].Path)
	}
	cfg.Source.Path = expandHome(cfg.Source.Path)
	cfg.Source.Dir = expandHome(cfg.Source.Dir)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindSource returns the named source, or nil.
func (c Config) FindSource(name string) *Source {
	for i := range c.Sources {
		if strings.EqualFold(c.Sources[i].Name, name) {
			return &c.Sources[i]
		}
	}
	return nil
}

// ResolveSource picks the snapshot path: an explicit argument (a file path or
// a registered source name), then source.path, then source.default. An empty
// result means "scan source.dir or the working directory".
func (c Config) ResolveSource(arg string) string {
	if arg != "" {
		if s := c.FindSource(arg); s != nil {
			return s.ResolvedPath()
		}
		return expandHome(arg)
	}
	if c.Source.Path != "" {
		return c.Source.Path
	}
	if c.Source.Default != "" {
		if s := c.FindSource(c.Source.Default); s != nil {
			return s.ResolvedPath()
		}
	}
	return ""
}

// ResolvedPath returns the source path with ~ expanded.
func (s Source) ResolvedPath() string {
	return expandHome(s.Path)
}

// ViewModelOptions converts the board section into builder options.
func (c Config) ViewModelOptions() (viewmodel.Options, error) {
	policy, err := viewmodel.ParseDuplicatePolicy(c.Board.Duplicates)
	if err != nil {
		return viewmodel.Options{}, err
	}
	return viewmodel.Options{Duplicates: policy}, nil
}

// RenderOptions converts the board section into render options. Connector
// pairs are filled in per update by the host.
func (c Config) RenderOptions() (board.Options, error) {
	mode, err := board.ParseProgressMode(c.Board.ProgressMode)
	if err != nil {
		return board.Options{}, err
	}
	progress := c.Board.Progress
	return board.Options{
		Progress:       &progress,
		ProgressMode:   mode,
		DrawConnectors: boolOr(c.Board.Connectors, true),
	}, nil
}

// Viewport returns the configured headless viewport.
func (c Config) Viewport() board.Size {
	return board.Size{Width: c.Board.Viewport.Width, Height: c.Board.Viewport.Height}
}

// ListenAddr returns host:port for the web host.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Addr, c.Server.Port)
}

// MouseEnabled reports whether the terminal host captures the mouse.
func (c Config) MouseEnabled() bool { return boolOr(c.UI.Mouse, true) }

// AltScreen reports whether the terminal host uses the alternate screen.
func (c Config) AltScreen() bool { return boolOr(c.UI.AltScreen, true) }

// WatchEnabled reports whether hosts reload on snapshot changes.
func (c Config) WatchEnabled() bool { return boolOr(c.UI.Watch, true) }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
