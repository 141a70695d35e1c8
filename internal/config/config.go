// Package config loads curator settings from a JSON config file with
// environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Catalog CatalogConfig
	Inbox   InboxConfig
	Fetch   FetchConfig
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
}

type CatalogConfig struct {
	Path string
}

type InboxConfig struct {
	Path string
}

type FetchConfig struct {
	Timeout     string // duration string, e.g. "15s"
	Delay       string // pause between fetches per worker
	Concurrency int
	MaxBodySize int
	UserAgent   string
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

// ParsedTimeout returns the fetch timeout, falling back to def when the
// configured string does not parse.
func (f FetchConfig) ParsedTimeout(def time.Duration) time.Duration {
	if d, err := time.ParseDuration(f.Timeout); err == nil && d > 0 {
		return d
	}
	return def
}

// ParsedDelay returns the per-fetch pacing delay; zero means no pacing.
func (f FetchConfig) ParsedDelay() time.Duration {
	if d, err := time.ParseDuration(f.Delay); err == nil && d > 0 {
		return d
	}
	return 0
}

func defaults() Config {
	return Config{
		Catalog: CatalogConfig{Path: "resources.txt"},
		Inbox:   InboxConfig{Path: "inbox.txt"},
		Fetch: FetchConfig{
			Timeout:     "15s",
			Delay:       "0s",
			Concurrency: 4,
			MaxBodySize: 5 << 20,
			UserAgent:   "curator/1.0 (+https://github.com/antoinelucasfra/curator)",
		},
		Server:  ServerConfig{Port: 4600},
		Storage: StorageConfig{DataDir: defaultDataDir()},
		Log:     LogConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "curator-data"
		}
	}
	return filepath.Join(dir, "curator")
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/curator/config.json, then applies CURATOR_* environment
// variable overrides.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
