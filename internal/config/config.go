// Package config provides configuration management for netcanvas.
//
// The config file holds how the server runs (listener, palette tables, scene
// files to import). Maps themselves live in the database and can be reset
// without touching the config.
//
// Config file locations (priority order):
//  1. $NETCANVAS_CONFIG
//  2. ./netcanvas.yaml
//  3. $XDG_CONFIG_HOME/netcanvas/config.yaml
//  4. ~/.config/netcanvas/config.yaml
//  5. /etc/netcanvas/config.yaml
//
// Relative scene, asset root and icon font paths are resolved against the
// directory of the loaded file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"netcanvas/internal/domain"
	"netcanvas/internal/palette"
)

const (
	defaultAddr         = ":3000"
	defaultDatabasePath = "./netcanvas.db"
	defaultWidth        = 1280
	defaultHeight       = 800
	defaultFetchTimeout = 10 * time.Second
	defaultDebounce     = 500 * time.Millisecond
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.resolvePaths(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, path, nil
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{
		Status: StatusConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Posture == "" {
		c.Posture = PostureBalanced
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Server.Auth.Enabled() && c.Server.Auth.Username == "" {
		c.Server.Auth.Username = "admin"
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Canvas.Width == 0 {
		c.Canvas.Width = defaultWidth
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = defaultHeight
	}
	if c.Assets.FetchTimeout == 0 {
		c.Assets.FetchTimeout = Duration(defaultFetchTimeout)
	}
	if c.Watcher.Debounce == 0 {
		c.Watcher.Debounce = Duration(defaultDebounce)
	}
	for i := range c.Scenes {
		if c.Scenes[i].Format == "" {
			c.Scenes[i].Format = FormatFromPath(c.Scenes[i].Path)
		}
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if c.Canvas.Width < 0 || c.Canvas.Height < 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if _, err := c.GlyphTable(); err != nil {
		return err
	}
	for _, e := range c.Palette.Colors {
		if _, err := palette.ParseColor(e.Color); err != nil {
			return fmt.Errorf("palette color %q: %w", e.Name, err)
		}
	}

	if c.Status.Ports != "" && !validPortList(c.Status.Ports) {
		return fmt.Errorf("status ports %q: expected a list like 22,80-443", c.Status.Ports)
	}

	seen := make(map[string]bool, len(c.Scenes))
	for i, s := range c.Scenes {
		if s.Path == "" {
			return fmt.Errorf("scene %d: path is required", i)
		}
		if err := domain.ValidateMapID(s.MapID); err != nil {
			return fmt.Errorf("scene %s: %w", s.Path, err)
		}
		if seen[s.MapID] {
			return fmt.Errorf("scene %s: map %q is already bound to another scene file", s.Path, s.MapID)
		}
		seen[s.MapID] = true
		switch s.Format {
		case "yaml", "json", "ansible":
		default:
			return fmt.Errorf("scene %s: unsupported format %q", s.Path, s.Format)
		}
	}
	return nil
}

var portListPattern = regexp.MustCompile(`^\d+(-\d+)?(,\d+(-\d+)?)*$`)

func validPortList(s string) bool {
	return portListPattern.MatchString(strings.ReplaceAll(s, " ", ""))
}

// FormatFromPath infers a scene format from a file extension
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".ini", ".inventory":
		return "ansible"
	default:
		return "yaml"
	}
}

// GlyphTable returns the configured glyph table, or the defaults when none is configured
func (c *Config) GlyphTable() ([]palette.GlyphEntry, error) {
	if len(c.Palette.Glyphs) == 0 {
		return palette.DefaultGlyphs(), nil
	}
	entries := make([]palette.GlyphEntry, 0, len(c.Palette.Glyphs))
	for _, g := range c.Palette.Glyphs {
		r, err := palette.ParseCodepoint(g.Codepoint)
		if err != nil {
			return nil, fmt.Errorf("palette glyph %q: %w", g.Name, err)
		}
		entries = append(entries, palette.GlyphEntry{Name: g.Name, Codepoint: r})
	}
	return entries, nil
}

// ColorTable returns the configured color table, or the defaults when none is configured
func (c *Config) ColorTable() []palette.ColorEntry {
	if len(c.Palette.Colors) == 0 {
		return palette.DefaultColors()
	}
	return c.Palette.Colors
}

// EffectiveBehavior returns behavior profile with overrides applied
func (c *Config) EffectiveBehavior() BehaviorProfile {
	base := c.Posture.GetProfile()

	if c.Behavior == nil {
		return base
	}

	if c.Behavior.PollInterval != nil {
		base.PollInterval = c.Behavior.PollInterval.Duration()
	}
	if c.Behavior.ProbeTimeout != nil {
		base.ProbeTimeout = c.Behavior.ProbeTimeout.Duration()
	}
	if c.Behavior.MaxTargetsPerScan != nil {
		base.MaxTargetsPerScan = *c.Behavior.MaxTargetsPerScan
	}

	return base
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	behavior := c.EffectiveBehavior()

	summary := fmt.Sprintf("Listen: %s, Database: %s, Canvas: %dx%d\n",
		c.Server.Addr, c.Database.Path, c.Canvas.Width, c.Canvas.Height)
	summary += fmt.Sprintf("Posture: %s, Poll: %s, Timeout: %s, Status poller: %v\n",
		c.Posture, behavior.PollInterval, behavior.ProbeTimeout, c.Status.Enabled)
	summary += fmt.Sprintf("Scene files (%d):", len(c.Scenes))
	for _, s := range c.Scenes {
		summary += fmt.Sprintf(" %s=%s", s.MapID, s.Path)
	}

	return summary
}
