package config

import (
	"fmt"
	"testing"
	"time"
)

// mapBackend is a test double for the Backend interface.
type mapBackend struct {
	data map[string]any
}

func (m mapBackend) GetString(key string) (string, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v), true, nil
	}
	return s, true, nil
}

func (m mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return 0, false, nil
	}
	i, ok := v.(int)
	if !ok {
		return 0, true, fmt.Errorf("invalid type for %s", key)
	}
	return i, true, nil
}

func (m mapBackend) SetString(key, val string) error  { m.data[key] = val; return nil }
func (m mapBackend) SetInt(key string, val int) error { m.data[key] = val; return nil }
func (m mapBackend) Delete(key string) error          { delete(m.data, key); return nil }

// TestDefaults verifies default values survive an empty backend.
func TestDefaults(t *testing.T) {
	cfg, err := loadWith(mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Catalog.Path != "resources.txt" {
		t.Errorf("Catalog.Path = %q, want %q", cfg.Catalog.Path, "resources.txt")
	}
	if cfg.Inbox.Path != "inbox.txt" {
		t.Errorf("Inbox.Path = %q, want %q", cfg.Inbox.Path, "inbox.txt")
	}
	if cfg.Fetch.Concurrency != 4 {
		t.Errorf("Fetch.Concurrency = %d, want 4", cfg.Fetch.Concurrency)
	}
	if cfg.Fetch.MaxBodySize != 5<<20 {
		t.Errorf("Fetch.MaxBodySize = %d", cfg.Fetch.MaxBodySize)
	}
	if cfg.Server.Port != 4600 {
		t.Errorf("Server.Port = %d, want 4600", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

// TestBackendValues verifies backend values replace defaults.
func TestBackendValues(t *testing.T) {
	cfg, err := loadWith(mapBackend{data: map[string]any{
		"catalog.path":      "/srv/links/resources.txt",
		"fetch.timeout":     "30s",
		"fetch.concurrency": 8,
		"server.port":       5600,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Catalog.Path != "/srv/links/resources.txt" {
		t.Errorf("Catalog.Path = %q", cfg.Catalog.Path)
	}
	if cfg.Fetch.Timeout != "30s" {
		t.Errorf("Fetch.Timeout = %q", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.Concurrency != 8 {
		t.Errorf("Fetch.Concurrency = %d", cfg.Fetch.Concurrency)
	}
	if cfg.Server.Port != 5600 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
}

// TestEnvOverride verifies environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("CURATOR_CATALOG_PATH", "/env/resources.txt")
	t.Setenv("CURATOR_FETCH_CONCURRENCY", "2")

	cfg, err := loadWith(mapBackend{data: map[string]any{
		"catalog.path":      "/file/resources.txt",
		"fetch.concurrency": 16,
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Catalog.Path != "/env/resources.txt" {
		t.Errorf("Catalog.Path = %q, want env value", cfg.Catalog.Path)
	}
	if cfg.Fetch.Concurrency != 2 {
		t.Errorf("Fetch.Concurrency = %d, want 2", cfg.Fetch.Concurrency)
	}
}

// TestEnvOverrideBadInt verifies a malformed integer env var is ignored.
func TestEnvOverrideBadInt(t *testing.T) {
	t.Setenv("CURATOR_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4600 {
		t.Errorf("Server.Port = %d, want default 4600", cfg.Server.Port)
	}
}

func TestParsedDurations(t *testing.T) {
	f := FetchConfig{Timeout: "30s", Delay: "250ms"}
	if got := f.ParsedTimeout(15 * time.Second); got != 30*time.Second {
		t.Errorf("ParsedTimeout = %v", got)
	}
	if got := f.ParsedDelay(); got != 250*time.Millisecond {
		t.Errorf("ParsedDelay = %v", got)
	}

	f = FetchConfig{Timeout: "garbage", Delay: ""}
	if got := f.ParsedTimeout(15 * time.Second); got != 15*time.Second {
		t.Errorf("ParsedTimeout fallback = %v", got)
	}
	if got := f.ParsedDelay(); got != 0 {
		t.Errorf("ParsedDelay fallback = %v", got)
	}
}

func TestShowAllAndValidKeys(t *testing.T) {
	cfg, err := loadWith(mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatal(err)
	}

	infos := ShowAll(cfg)
	if len(infos) != len(ValidKeys()) {
		t.Fatalf("ShowAll returned %d entries, ValidKeys %d", len(infos), len(ValidKeys()))
	}
	found := false
	for _, ki := range infos {
		if ki.Key == "fetch.user_agent" && ki.EnvVar == "CURATOR_FETCH_USER_AGENT" {
			found = true
		}
	}
	if !found {
		t.Error("fetch.user_agent missing from ShowAll")
	}
}
