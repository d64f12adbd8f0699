// Package config reads and writes the on-disk TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"opdscat/internal/server"
)

// Dir is joined with $HOME to locate the configuration directory.
const Dir = ".config/opdscat"

// Config holds the application settings. Servers map a display name to
// the catalog it connects to; passwords live in the OS keyring, never
// here.
type Config struct {
	DownloadDirectory string                   `toml:"download_directory"`
	Servers           map[string]server.Server `toml:"servers,omitempty"`
}

// Path returns the config file location under the given home directory.
func Path(home string) string {
	return filepath.Join(home, Dir, "config.toml")
}

// Load reads the configuration at path. On first run no file exists and
// a minimal default pointing the download directory at $HOME is written
// before loading.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeDefault(path); err != nil {
			return Config{}, fmt.Errorf("create default config: %w", err)
		}
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DownloadDirectory == "" {
		return Config{}, errors.New("config is missing download_directory")
	}
	return cfg, nil
}

// Write persists the configuration back to path. Called after a server
// is added interactively so the connection survives a restart.
func (c Config) Write(path string) error {
	raw, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	home := os.Getenv("HOME")
	contents := fmt.Sprintf("download_directory = '%s'\n", home)
	return os.WriteFile(path, []byte(contents), 0o644)
}
