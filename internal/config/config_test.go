package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Search.Program != "auto" {
		t.Errorf("Expected search.program=auto, got %s", cfg.Search.Program)
	}
	if cfg.Search.Async {
		t.Error("Expected search.async=false by default")
	}
	if !cfg.Search.Highlight {
		t.Error("Expected search.highlight=true by default")
	}
	if cfg.Search.Scope != "global" {
		t.Errorf("Expected search.scope=global, got %s", cfg.Search.Scope)
	}
	if cfg.Picker.PageSize != 100 {
		t.Errorf("Expected picker.page_size=100, got %d", cfg.Picker.PageSize)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected log.level=info, got %s", cfg.Log.Level)
	}
}

func TestConfigGet(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key      string
		expected string
	}{
		{"search.program", "auto"},
		{"search.async", "false"},
		{"search.highlight", "true"},
		{"search.scope", "global"},
		{"picker.page_size", "100"},
		{"log.level", "info"},
		{"log.file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) returned error: %v", tt.key, err)
			}
			if got != tt.expected {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestConfigGetErrors(t *testing.T) {
	cfg := DefaultConfig()

	for _, key := range []string{"search", "search.bogus", "bogus.program", "a.b.c"} {
		if _, err := cfg.Get(key); err == nil {
			t.Errorf("Get(%q) expected error, got nil", key)
		}
	}
}

func TestConfigSet(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Set("search.program", "grep -rn"); err != nil {
		t.Fatalf("Set search.program: %v", err)
	}
	if cfg.Search.Program != "grep -rn" {
		t.Errorf("search.program = %q, want %q", cfg.Search.Program, "grep -rn")
	}

	if err := cfg.Set("search.async", "true"); err != nil {
		t.Fatalf("Set search.async: %v", err)
	}
	if !cfg.Search.Async {
		t.Error("search.async not set")
	}

	if err := cfg.Set("search.scope", "local"); err != nil {
		t.Fatalf("Set search.scope: %v", err)
	}
	if cfg.Search.Scope != "local" {
		t.Errorf("search.scope = %q, want local", cfg.Search.Scope)
	}

	if err := cfg.Set("log.level", "debug"); err != nil {
		t.Fatalf("Set log.level: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug", cfg.Log.Level)
	}
}

func TestConfigSetInvalid(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key   string
		value string
	}{
		{"search.scope", "window"},
		{"search.async", "definitely"},
		{"log.level", "verbose"},
		{"picker.page_size", "many"},
		{"search.bogus", "x"},
	}

	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q) expected error, got nil", tt.key, tt.value)
		}
	}
}

func TestConfigSetClampsPageSize(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Set("picker.page_size", "3"); err != nil {
		t.Fatalf("Set picker.page_size: %v", err)
	}
	if cfg.Picker.PageSize != 10 {
		t.Errorf("page_size = %d, want clamped to 10", cfg.Picker.PageSize)
	}

	if err := cfg.Set("picker.page_size", "9999"); err != nil {
		t.Fatalf("Set picker.page_size: %v", err)
	}
	if cfg.Picker.PageSize != 500 {
		t.Errorf("page_size = %d, want clamped to 500", cfg.Picker.PageSize)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile on missing file: %v", err)
	}
	if cfg.Search.Program != "auto" {
		t.Errorf("missing file should yield defaults, got program=%q", cfg.Search.Program)
	}
}

func TestLoadFromFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Search.Program = "rg --vimgrep"
	cfg.Search.Async = true
	cfg.Search.Scope = "local"
	cfg.Picker.PageSize = 50
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Search.Program != "rg --vimgrep" {
		t.Errorf("program = %q", loaded.Search.Program)
	}
	if !loaded.Search.Async {
		t.Error("async not persisted")
	}
	if loaded.Search.Scope != "local" {
		t.Errorf("scope = %q", loaded.Search.Scope)
	}
	if loaded.Picker.PageSize != 50 {
		t.Errorf("page_size = %d", loaded.Picker.PageSize)
	}
}

func TestLoadFromFileInvalidScope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search:\n  scope: window\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("expected validation error for bad scope")
	}
	if !strings.Contains(err.Error(), "search.scope") {
		t.Errorf("error %q should mention search.scope", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GREPL_PROGRAM", "grep -rn")
	t.Setenv("GREPL_ASYNC", "true")
	t.Setenv("GREPL_HIGHLIGHT", "false")
	t.Setenv("GREPL_SCOPE", "local")
	t.Setenv("GREPL_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Search.Program != "grep -rn" {
		t.Errorf("program = %q", cfg.Search.Program)
	}
	if !cfg.Search.Async {
		t.Error("async override not applied")
	}
	if cfg.Search.Highlight {
		t.Error("highlight override not applied")
	}
	if cfg.Search.Scope != "local" {
		t.Errorf("scope = %q", cfg.Search.Scope)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestEnvOverridesDebugWins(t *testing.T) {
	t.Setenv("GREPL_DEBUG", "1")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Log.Level != "debug" {
		t.Errorf("GREPL_DEBUG should force debug level, got %q", cfg.Log.Level)
	}
}

func TestEnvOverridesIgnoreInvalid(t *testing.T) {
	t.Setenv("GREPL_ASYNC", "maybe")
	t.Setenv("GREPL_SCOPE", "window")
	t.Setenv("GREPL_LOG_LEVEL", "loud")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.Search.Async {
		t.Error("invalid GREPL_ASYNC should be ignored")
	}
	if cfg.Search.Scope != "global" {
		t.Errorf("invalid GREPL_SCOPE should be ignored, got %q", cfg.Search.Scope)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("invalid GREPL_LOG_LEVEL should be ignored, got %q", cfg.Log.Level)
	}
}

func TestResolveProgram(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Search.Program = "off"
	if got := cfg.ResolveProgram(); got != "" {
		t.Errorf("off should resolve to empty, got %q", got)
	}

	cfg.Search.Program = "my-grep --custom"
	if got := cfg.ResolveProgram(); got != "my-grep --custom" {
		t.Errorf("explicit program should pass through, got %q", got)
	}
}

func TestListKeys(t *testing.T) {
	keys := ListKeys()
	if len(keys) == 0 {
		t.Fatal("ListKeys returned nothing")
	}

	cfg := DefaultConfig()
	for _, key := range keys {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("listed key %q not gettable: %v", key, err)
		}
	}
}
