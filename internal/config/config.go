// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for skribe.
//
// Configuration lives in TOML at ~/.skribe/config.toml, with built-in
// defaults and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete skribe configuration.
type Config struct {
	Version string `toml:"version"`

	Provider ProviderConfig `toml:"provider"`
	UI       UIConfig       `toml:"ui"`
	History  HistoryConfig  `toml:"history"`
	Journal  JournalConfig  `toml:"journal"`
	Alias    AliasConfig    `toml:"alias"`
}

// ProviderConfig describes the chat completion endpoint.
type ProviderConfig struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string `toml:"base_url"`
	// APIKey is the bearer token. Values with the ENC: prefix are
	// decrypted through the keystore at load time.
	APIKey string `toml:"api_key"`
	// Model is the default model identifier.
	Model string `toml:"model"`
	// Temperature for sampling; 0 uses the server default.
	Temperature float64 `toml:"temperature"`
	// MaxTokens caps the reply length; 0 uses the server default.
	MaxTokens int `toml:"max_tokens"`
	// Stream selects incremental delivery; whole-reply when false.
	Stream bool `toml:"stream"`
}

// UIConfig tunes the chat view.
type UIConfig struct {
	// Theme is "auto", "dark", or "light".
	Theme string `toml:"theme"`
	// SyntaxStyle is the chroma style for code blocks.
	SyntaxStyle string `toml:"syntax_style"`
	// ThrottleBytes is the redraw byte threshold while streaming.
	ThrottleBytes int `toml:"throttle_bytes"`
	// ThrottleMs is the redraw deadline in milliseconds while streaming.
	ThrottleMs int `toml:"throttle_ms"`
}

// HistoryConfig controls conversation persistence.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	// Path of the SQLite database; empty means ~/.skribe/history.db.
	Path string `toml:"path"`
	// MaxSessions prunes the oldest sessions beyond this count (0 = keep all).
	MaxSessions int `toml:"max_sessions"`
}

// JournalConfig controls the daily journal.
type JournalConfig struct {
	// Dir holds one Markdown file per day; empty means ~/.skribe/journal.
	Dir string `toml:"dir"`
}

// AliasConfig controls prompt aliases.
type AliasConfig struct {
	// Path of the YAML alias store; empty means ~/.skribe/aliases.yaml.
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Provider: ProviderConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			Model:       "anthropic/claude-3.5-sonnet",
			Temperature: 0.7,
			Stream:      true,
		},
		UI: UIConfig{
			Theme:         "auto",
			SyntaxStyle:   "monokai",
			ThrottleBytes: 15,
			ThrottleMs:    100,
		},
		History: HistoryConfig{
			Enabled:     true,
			MaxSessions: 200,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.skribe.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".skribe"), nil
}

// ConfigPath returns the TOML config path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the config directory with owner-only access.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// HistoryPath resolves the history database location.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// JournalDir resolves the journal directory.
func (c *Config) JournalDir() (string, error) {
	if c.Journal.Dir != "" {
		return c.Journal.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal"), nil
}

// AliasPath resolves the alias store location.
func (c *Config) AliasPath() (string, error) {
	if c.Alias.Path != "" {
		return c.Alias.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aliases.yaml"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, falling back to defaults when it does not
// exist, then applies environment overrides and decrypts the API key.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()

	if IsEncrypted(cfg.Provider.APIKey) {
		ks, err := OpenKeystore()
		if err != nil {
			return nil, fmt.Errorf("open keystore: %w", err)
		}
		plain, err := ks.DecryptString(cfg.Provider.APIKey)
		if err != nil {
			return nil, fmt.Errorf("decrypt api key: %w", err)
		}
		cfg.Provider.APIKey = plain
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillDefaults backfills zero values a sparse file left out.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = def.Provider.BaseURL
	}
	if c.Provider.Model == "" {
		c.Provider.Model = def.Provider.Model
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.SyntaxStyle == "" {
		c.UI.SyntaxStyle = def.UI.SyntaxStyle
	}
	if c.UI.ThrottleBytes <= 0 {
		c.UI.ThrottleBytes = def.UI.ThrottleBytes
	}
	if c.UI.ThrottleMs <= 0 {
		c.UI.ThrottleMs = def.UI.ThrottleMs
	}
}

// Save writes the config as TOML with owner-only permissions.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides lets the environment win over the file for the
// settings people most often vary per shell.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SKRIBE_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("SKRIBE_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("SKRIBE_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("SKRIBE_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("SKRIBE_NO_STREAM"); v != "" {
		c.Provider.Stream = false
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidateErrors aggregates all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks field constraints, reporting every failure at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"provider.base_url", "must be an absolute URL"})
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		errs = append(errs, ValidationError{"provider.temperature", "must be between 0 and 2"})
	}
	if c.Provider.MaxTokens < 0 {
		errs = append(errs, ValidationError{"provider.max_tokens", "must not be negative"})
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{"ui.theme", `must be "auto", "dark", or "light"`})
	}
	if c.History.MaxSessions < 0 {
		errs = append(errs, ValidationError{"history.max_sessions", "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// KEY ACCESS FOR THE CLI
// =============================================================================

// Get reads a setting by dotted key, for `skribe config get`.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "provider.base_url":
		return c.Provider.BaseURL, nil
	case "provider.model":
		return c.Provider.Model, nil
	case "provider.temperature":
		return strconv.FormatFloat(c.Provider.Temperature, 'f', -1, 64), nil
	case "provider.max_tokens":
		return strconv.Itoa(c.Provider.MaxTokens), nil
	case "provider.stream":
		return strconv.FormatBool(c.Provider.Stream), nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.syntax_style":
		return c.UI.SyntaxStyle, nil
	case "ui.throttle_bytes":
		return strconv.Itoa(c.UI.ThrottleBytes), nil
	case "ui.throttle_ms":
		return strconv.Itoa(c.UI.ThrottleMs), nil
	case "history.enabled":
		return strconv.FormatBool(c.History.Enabled), nil
	case "history.max_sessions":
		return strconv.Itoa(c.History.MaxSessions), nil
	default:
		return "", fmt.Errorf("config: unknown key %q", key)
	}
}

// Set writes a setting by dotted key, for `skribe config set`.
func (c *Config) Set(key, value string) error {
	switch key {
	case "provider.base_url":
		c.Provider.BaseURL = value
	case "provider.model":
		c.Provider.Model = value
	case "provider.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.Provider.Temperature = f
	case "provider.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.Provider.MaxTokens = n
	case "provider.stream":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.Provider.Stream = b
	case "ui.theme":
		c.UI.Theme = value
	case "ui.syntax_style":
		c.UI.SyntaxStyle = value
	case "ui.throttle_bytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.UI.ThrottleBytes = n
	case "ui.throttle_ms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.UI.ThrottleMs = n
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.History.Enabled = b
	case "history.max_sessions":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.History.MaxSessions = n
	default:
		return fmt.Errorf("config: unknown key %q", key)
	}
	return c.Validate()
}

// Keys returns the settable keys in display order.
func Keys() []string {
	return []string{
		"provider.base_url",
		"provider.model",
		"provider.temperature",
		"provider.max_tokens",
		"provider.stream",
		"ui.theme",
		"ui.syntax_style",
		"ui.throttle_bytes",
		"ui.throttle_ms",
		"history.enabled",
		"history.max_sessions",
	}
}
