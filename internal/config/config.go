// Package config provides configuration loading for Quill.
//
// Configuration is stored as TOML. The language server table maps LSP
// language identifiers to the command used to start the server for that
// language:
//
//	request_timeout = "10s"
//
//	[servers.go]
//	command = "gopls"
//	args = ["serve"]
//
//	[servers.rust]
//	command = "rust-analyzer"
//
// A missing configuration file is not an error; the built-in defaults apply.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig defines how to start a language server.
type ServerConfig struct {
	// Command is the executable to run.
	Command string `toml:"command"`

	// Args are command-line arguments.
	Args []string `toml:"args"`
}

// Config holds the resolved editor configuration.
type Config struct {
	// RequestTimeout bounds each language server exchange. Zero means no
	// deadline: a request may block its caller indefinitely.
	RequestTimeout time.Duration

	// Servers maps language identifiers to server configurations.
	Servers map[string]ServerConfig
}

// fileConfig is the on-disk TOML shape.
type fileConfig struct {
	RequestTimeout string                  `toml:"request_timeout"`
	Servers        map[string]ServerConfig `toml:"servers"`
}

// Default returns the built-in configuration with the default server table.
func Default() Config {
	return Config{
		RequestTimeout: 0,
		Servers: map[string]ServerConfig{
			"go": {
				Command: "gopls",
				Args:    []string{"serve"},
			},
			"rust": {
				Command: "rust-analyzer",
			},
			"typescript": {
				Command: "typescript-language-server",
				Args:    []string{"--stdio"},
			},
			"javascript": {
				Command: "typescript-language-server",
				Args:    []string{"--stdio"},
			},
			"python": {
				Command: "pylsp",
			},
			"c": {
				Command: "clangd",
			},
			"cpp": {
				Command: "clangd",
			},
		},
	}
}

// Load reads configuration from path, merged over the defaults.
// A missing file returns the defaults with no error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return cfg, fmt.Errorf("parsing request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}

	// File entries override defaults per language.
	for lang, sc := range fc.Servers {
		cfg.Servers[lang] = sc
	}

	return cfg, nil
}

// DefaultPath returns the conventional configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "quill", "config.toml")
}

// ServerFor returns the server configuration for a language identifier.
func (c Config) ServerFor(languageID string) (ServerConfig, bool) {
	sc, ok := c.Servers[languageID]
	if !ok || sc.Command == "" {
		return ServerConfig{}, false
	}
	return sc, true
}

// Available returns the subset of configured servers whose command is
// installed on this system.
func (c Config) Available() map[string]ServerConfig {
	available := make(map[string]ServerConfig)
	for lang, sc := range c.Servers {
		if sc.Command == "" {
			continue
		}
		if _, err := exec.LookPath(sc.Command); err == nil {
			available[lang] = sc
		}
	}
	return available
}
