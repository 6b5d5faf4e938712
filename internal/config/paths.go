package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "NETCANVAS_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "netcanvas.yaml"
	// ConfigDirName is the directory under the XDG and system config roots
	ConfigDirName = "netcanvas"
)

// searchPaths lists candidate config files, most specific first
func searchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, ConfigFileName)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing file from searchPaths as an
// absolute path, or "" when there is none
func FindConfigPath() string {
	for _, p := range searchPaths() {
		if !fileExists(p) {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

// resolvePaths anchors the file references of a loaded config at the
// config file's directory, so a config can be moved with its maps
func (c *Config) resolvePaths(dir string) {
	for i := range c.Scenes {
		c.Scenes[i].Path = resolve(dir, c.Scenes[i].Path)
	}
	c.Assets.Root = resolve(dir, c.Assets.Root)
	c.Canvas.IconFont = resolve(dir, c.Canvas.IconFont)
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
