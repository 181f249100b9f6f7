// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/jeranaias/aura-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete aura configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Chat   ChatConfig   `toml:"chat"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
	Serve  ServeConfig  `toml:"serve"`
}

// ServerConfig describes how to reach the conversation service.
type ServerConfig struct {
	// BaseURL is the service root, e.g. "http://localhost:8002"
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds each request
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerSecond paces outgoing requests; 0 disables pacing
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// Burst is the pacing burst size
	Burst int `toml:"burst"`
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// ChatConfig contains conversation behavior.
type ChatConfig struct {
	// ConfirmDelete asks before deleting a conversation
	ConfirmDelete bool `toml:"confirm_delete"`
	// ShowStarters offers starter prompts on an empty conversation
	ShowStarters bool `toml:"show_starters"`
	// HistoryFile stores REPL line history; empty uses ~/.aura/history
	HistoryFile string `toml:"history_file"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme"`
	// Markdown renders assistant replies as Markdown
	Markdown bool `toml:"markdown"`
	// CodeStyle is the chroma style for code blocks when Markdown is off
	CodeStyle string `toml:"code_style"`
	// ShowTimestamps shows message times
	ShowTimestamps bool `toml:"show_timestamps"`
	// SidebarWidth is the conversation list width in columns
	SidebarWidth int `toml:"sidebar_width"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error"
	Level string `toml:"level"`
	// Format is "text" or "json"
	Format string `toml:"format"`
	// File is the rotating log file; empty uses ~/.aura/aura.log
	File string `toml:"file"`
	// MaxSizeMB rotates the file at this size
	MaxSizeMB int `toml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `toml:"max_backups"`
	// MaxAgeDays removes rotated files older than this
	MaxAgeDays int `toml:"max_age_days"`
}

// ServeConfig configures the development server.
type ServeConfig struct {
	// Addr is the listen address
	Addr string `toml:"addr"`
	// Database is the SQLite path; ":memory:" keeps everything in memory
	Database string `toml:"database"`
	// RateLimit is the number of messages allowed per window per client
	RateLimit int `toml:"rate_limit"`
	// RateWindowSecs is the rate limit window
	RateWindowSecs int `toml:"rate_window_secs"`
	// MaxUploadMB bounds upload size
	MaxUploadMB int `toml:"max_upload_mb"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:           "http://localhost:8002",
			TimeoutSecs:       60,
			RequestsPerSecond: 0,
			Burst:             4,
		},
		Chat: ChatConfig{
			ConfirmDelete: true,
			ShowStarters:  true,
		},
		UI: UIConfig{
			Theme:          "auto",
			Markdown:       true,
			CodeStyle:      "monokai",
			ShowTimestamps: false,
			SidebarWidth:   28,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Serve: ServeConfig{
			Addr:           ":8002",
			RateLimit:      10,
			RateWindowSecs: 60,
			MaxUploadMB:    10,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the aura configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".aura"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogFile returns the default log file path.
func DefaultLogFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "aura.log")
	}
	return filepath.Join(dir, "aura.log")
}

// DefaultHistoryFile returns the default REPL history path.
func DefaultHistoryFile() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

// DefaultDatabase returns the default development server database path.
func DefaultDatabase() string {
	dir, err := ConfigDir()
	if err != nil {
		return ":memory:"
	}
	return filepath.Join(dir, "aura.db")
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the default config file if it exists, then applies
// environment overrides and validates. A missing file yields defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid config")
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file with defaults,
// environment overrides and validation applied.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "load config from %s", path)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return errors.Wrap(err, "decode TOML file")
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults replaces explicitly empty values that have no valid empty
// meaning.
func fillDefaults(cfg *Config) {
	d := Default()
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = d.Server.BaseURL
	}
	if cfg.Server.TimeoutSecs == 0 {
		cfg.Server.TimeoutSecs = d.Server.TimeoutSecs
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = d.Server.Burst
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
	if cfg.UI.CodeStyle == "" {
		cfg.UI.CodeStyle = d.UI.CodeStyle
	}
	if cfg.UI.SidebarWidth == 0 {
		cfg.UI.SidebarWidth = d.UI.SidebarWidth
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = d.Serve.Addr
	}
	if cfg.Serve.RateLimit == 0 {
		cfg.Serve.RateLimit = d.Serve.RateLimit
	}
	if cfg.Serve.RateWindowSecs == 0 {
		cfg.Serve.RateWindowSecs = d.Serve.RateWindowSecs
	}
	if cfg.Serve.MaxUploadMB == 0 {
		cfg.Serve.MaxUploadMB = d.Serve.MaxUploadMB
	}
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# aura configuration file\n")
	buf.WriteString("# Generated by aura - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[:port]", c.Server.BaseURL),
		})
	}
	if c.Server.TimeoutSecs < 1 || c.Server.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.Server.TimeoutSecs),
		})
	}
	if c.Server.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{Field: "server.requests_per_second", Message: "must not be negative"})
	}
	if c.Server.Burst < 1 {
		errs = append(errs, ValidationError{Field: "server.burst", Message: "must be at least 1"})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.SidebarWidth < 12 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: fmt.Sprintf("must be between 12 and 80, got %d", c.UI.SidebarWidth),
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Log.Format),
		})
	}

	if c.Serve.RateLimit < 1 {
		errs = append(errs, ValidationError{Field: "serve.rate_limit", Message: "must be at least 1"})
	}
	if c.Serve.RateWindowSecs < 1 {
		errs = append(errs, ValidationError{Field: "serve.rate_window_secs", Message: "must be at least 1"})
	}
	if c.Serve.MaxUploadMB < 1 {
		errs = append(errs, ValidationError{Field: "serve.max_upload_mb", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - AURA_BASE_URL: overrides server.base_url
//   - AURA_THEME: overrides ui.theme
//   - AURA_LOG_LEVEL: overrides log.level
//   - AURA_LOG_FILE: overrides log.file
//   - AURA_DATABASE: overrides serve.database
//   - AURA_ADDR: overrides serve.addr
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AURA_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("AURA_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("AURA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AURA_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("AURA_DATABASE"); v != "" {
		c.Serve.Database = v
	}
	if v := os.Getenv("AURA_ADDR"); v != "" {
		c.Serve.Addr = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup resolves a dotted key by TOML tag.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if key == "" || len(parts) == 0 {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if strings.EqualFold(t.Field(i).Tag.Get("toml"), name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				boolVal = strings.EqualFold(strVal, "yes")
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every configuration key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, section.Tag.Get("toml")+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	_ = toml.NewEncoder(&buf).Encode(c)
	return buf.String()
}
