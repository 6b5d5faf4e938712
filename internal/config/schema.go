package config

import (
	"time"

	"netcanvas/internal/palette"
)

// Config is the root configuration structure
type Config struct {
	Version  int               `yaml:"version"`
	Posture  Posture           `yaml:"posture"`
	Behavior *BehaviorOverride `yaml:"behavior,omitempty"`
	Server   ServerConfig      `yaml:"server"`
	Database DatabaseConfig    `yaml:"database"`
	Canvas   CanvasConfig      `yaml:"canvas"`
	Assets   AssetsConfig      `yaml:"assets"`
	Palette  PaletteConfig     `yaml:"palette"`
	Status   StatusConfig      `yaml:"status"`
	Watcher  WatcherConfig     `yaml:"watcher"`
	Scenes   []SceneConfig     `yaml:"scenes,omitempty"`
}

// BehaviorOverride allows overriding posture defaults
type BehaviorOverride struct {
	PollInterval      *Duration `yaml:"poll_interval,omitempty"`
	ProbeTimeout      *Duration `yaml:"probe_timeout,omitempty"`
	MaxTargetsPerScan *int      `yaml:"max_targets_per_scan,omitempty"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr string     `yaml:"addr"`
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig enables basic auth on the API when PasswordHash is set.
// PasswordHash is a bcrypt hash, never a plain password.
type AuthConfig struct {
	Username     string `yaml:"username,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"`
}

// Enabled reports whether credentials are configured
func (a AuthConfig) Enabled() bool {
	return a.PasswordHash != ""
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CanvasConfig sizes the per-session canvas surfaces
type CanvasConfig struct {
	Width             int    `yaml:"width"`
	Height            int    `yaml:"height"`
	NativeContextMenu bool   `yaml:"native_context_menu"`
	IconFont          string `yaml:"icon_font,omitempty"` // TTF with the glyph codepoints
}

// AssetsConfig controls background and image fetching
type AssetsConfig struct {
	Root         string   `yaml:"root"`
	FetchTimeout Duration `yaml:"fetch_timeout"`
}

// PaletteConfig holds the glyph and color tables. Empty tables use the built-in defaults.
type PaletteConfig struct {
	Glyphs []GlyphConfig        `yaml:"glyphs,omitempty"`
	Colors []palette.ColorEntry `yaml:"colors,omitempty"`
}

// GlyphConfig maps an icon name to a hex codepoint ("f048b", "U+F048B")
type GlyphConfig struct {
	Name      string `yaml:"name"`
	Codepoint string `yaml:"codepoint"`
}

// StatusConfig controls the node status poller
type StatusConfig struct {
	Enabled bool   `yaml:"enabled"`
	// Ports switches from ping to a TCP probe of these ports, e.g. "22,443"
	Ports   string `yaml:"ports,omitempty"`
}

// WatcherConfig controls scene file hot reload
type WatcherConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// SceneConfig is a scene file imported at startup into a map
type SceneConfig struct {
	Path     string `yaml:"path"`
	MapID    string `yaml:"map_id"`
	Format   string `yaml:"format,omitempty"` // yaml, json or ansible; inferred from the extension when empty
	ReadOnly bool   `yaml:"read_only,omitempty"`
	Watch    bool   `yaml:"watch,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
