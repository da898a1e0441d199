// Package config provides configuration management for grepl.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// Config represents the grepl configuration.
type Config struct {
	Search SearchConfig `yaml:"search"`
	Picker PickerConfig `yaml:"picker"`
	Log    LogConfig    `yaml:"log"`
}

// SearchConfig holds search dispatch settings.
type SearchConfig struct {
	Program   string `yaml:"program"`   // Search command with base flags; "auto" probes, "off" disables
	Async     bool   `yaml:"async"`     // Run searches under the background job runner
	Highlight bool   `yaml:"highlight"` // Publish the captured pattern for highlighting
	Scope     string `yaml:"scope"`     // Default list scope: global or local
}

// PickerConfig holds interactive list settings.
type PickerConfig struct {
	PageSize int `yaml:"page_size"` // Number of entries per page
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (empty = stderr)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Program:   "auto",
			Async:     false,
			Highlight: true,
			Scope:     "global",
		},
		Picker: PickerConfig{
			PageSize: 100,
		},
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveProgram turns the configured program into the concrete command line
// searches dispatch with. "auto" probes the PATH for a known tool; "off" (and
// a failed probe) yields the empty string, which disables searching.
func (c *Config) ResolveProgram() string {
	switch c.Search.Program {
	case "off", "none":
		return ""
	case "auto", "":
		return DetectProgram()
	default:
		return c.Search.Program
	}
}

// knownPrograms are probed in order by DetectProgram. Each emits
// file:line:col:text records on stdout.
var knownPrograms = []string{
	"rg --vimgrep --no-heading --color=never",
	"ag --vimgrep --nocolor",
	"grep -rn",
}

// DetectProgram returns the first known search program whose executable is on
// the PATH, or "" when none is found.
func DetectProgram() string {
	for _, candidate := range knownPrograms {
		argv, err := shlex.Split(candidate)
		if err != nil || len(argv) == 0 {
			continue
		}
		if _, err := exec.LookPath(argv[0]); err == nil {
			return candidate
		}
	}
	return ""
}

// Get retrieves a configuration value by dot-separated key.
// For example: "search.program" or "picker.page_size"
func (c *Config) Get(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "search":
		return c.getSearchField(field)
	case "picker":
		return c.getPickerField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "search":
		return c.setSearchField(field, value)
	case "picker":
		return c.setPickerField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) getSearchField(field string) (string, error) {
	switch field {
	case "program":
		return c.Search.Program, nil
	case "async":
		return strconv.FormatBool(c.Search.Async), nil
	case "highlight":
		return strconv.FormatBool(c.Search.Highlight), nil
	case "scope":
		return c.Search.Scope, nil
	default:
		return "", fmt.Errorf("unknown field: search.%s", field)
	}
}

func (c *Config) setSearchField(field, value string) error {
	switch field {
	case "program":
		c.Search.Program = value
	case "async":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for async: %w", err)
		}
		c.Search.Async = v
	case "highlight":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for highlight: %w", err)
		}
		c.Search.Highlight = v
	case "scope":
		if !isValidScope(value) {
			return fmt.Errorf("invalid scope: %s (must be global or local)", value)
		}
		c.Search.Scope = value
	default:
		return fmt.Errorf("unknown field: search.%s", field)
	}
	return nil
}

func (c *Config) getPickerField(field string) (string, error) {
	switch field {
	case "page_size":
		return strconv.Itoa(c.Picker.PageSize), nil
	default:
		return "", fmt.Errorf("unknown field: picker.%s", field)
	}
}

func (c *Config) setPickerField(field, value string) error {
	switch field {
	case "page_size":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for page_size: %w", err)
		}
		if v < 10 {
			v = 10
		}
		if v > 500 {
			v = 500
		}
		c.Picker.PageSize = v
	default:
		return fmt.Errorf("unknown field: picker.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !isValidScope(c.Search.Scope) {
		return fmt.Errorf("search.scope must be global or local (got: %s)", c.Search.Scope)
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	// Clamp picker page size to [10, 500]
	if c.Picker.PageSize < 10 {
		c.Picker.PageSize = 10
	}
	if c.Picker.PageSize > 500 {
		c.Picker.PageSize = 500
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables override config file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GREPL_PROGRAM"); v != "" {
		c.Search.Program = v
	}
	if v := os.Getenv("GREPL_ASYNC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Search.Async = b
		}
	}
	if v := os.Getenv("GREPL_HIGHLIGHT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Search.Highlight = b
		}
	}
	if v := os.Getenv("GREPL_SCOPE"); v != "" {
		if isValidScope(v) {
			c.Search.Scope = v
		}
	}
	if v := os.Getenv("GREPL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("GREPL_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"search.program",
		"search.async",
		"search.highlight",
		"search.scope",
		"picker.page_size",
		"log.level",
		"log.file",
	}
}

func isValidScope(scope string) bool {
	switch scope {
	case "global", "local":
		return true
	default:
		return false
	}
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
