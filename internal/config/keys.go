package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "catalog.path", typ: kString, env: "CURATOR_CATALOG_PATH",
		apply:   func(cfg *Config, v any) { cfg.Catalog.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Catalog.Path },
	},
	{
		key: "inbox.path", typ: kString, env: "CURATOR_INBOX_PATH",
		apply:   func(cfg *Config, v any) { cfg.Inbox.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Inbox.Path },
	},
	{
		key: "fetch.timeout", typ: kString, env: "CURATOR_FETCH_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Fetch.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Fetch.Timeout },
	},
	{
		key: "fetch.delay", typ: kString, env: "CURATOR_FETCH_DELAY",
		apply:   func(cfg *Config, v any) { cfg.Fetch.Delay = v.(string) },
		extract: func(cfg Config) any { return cfg.Fetch.Delay },
	},
	{
		key: "fetch.concurrency", typ: kInt, env: "CURATOR_FETCH_CONCURRENCY",
		apply:   func(cfg *Config, v any) { cfg.Fetch.Concurrency = v.(int) },
		extract: func(cfg Config) any { return cfg.Fetch.Concurrency },
	},
	{
		key: "fetch.max_body_size", typ: kInt, env: "CURATOR_FETCH_MAX_BODY_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Fetch.MaxBodySize = v.(int) },
		extract: func(cfg Config) any { return cfg.Fetch.MaxBodySize },
	},
	{
		key: "fetch.user_agent", typ: kString, env: "CURATOR_FETCH_USER_AGENT",
		apply:   func(cfg *Config, v any) { cfg.Fetch.UserAgent = v.(string) },
		extract: func(cfg Config) any { return cfg.Fetch.UserAgent },
	},
	{
		key: "server.port", typ: kInt, env: "CURATOR_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", typ: kString, env: "CURATOR_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "CURATOR_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b Backend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
