// Package config handles the fureal configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/fureal/fureal/internal/models"
)

// Environment variables that override the file
const (
	EnvHome         = "FUREAL_HOME"
	EnvBackendURL   = "FUREAL_BACKEND_URL"
	EnvGlamourStyle = "GLAMOUR_STYLE"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "auto" or a glamour style name
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// LoggingConfig controls the file logger
type LoggingConfig struct {
	Enabled bool   `json:"enabled"`
	Level   string `json:"level"`          // debug, info, warn, error
	File    string `json:"file,omitempty"` // Defaults to <config dir>/logs/fureal.log
}

// Config represents the user configuration
type Config struct {
	BackendURL string `json:"backend_url"`
	ChatPath   string `json:"chat_path"`
	// RequestTimeout bounds one exchange in seconds. Zero, the default,
	// leaves both the exchange and the transport unbounded.
	RequestTimeout int `json:"request_timeout"`
	// AudioPlayer is the command used to play replies. Empty means auto-detect.
	AudioPlayer     string         `json:"audio_player,omitempty"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	TranscriptDir   string         `json:"transcript_dir,omitempty"`
	Markdown        MarkdownConfig `json:"markdown"`
	Logging         LoggingConfig  `json:"logging"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BackendURL:      models.DefaultBackendURL,
		ChatPath:        models.DefaultChatPath,
		RequestTimeout:  0,
		CopyToClipboard: false,
		TUITheme:        "fureal",
		Markdown:        DefaultMarkdownConfig(),
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
	}
}

// Timeout returns RequestTimeout as a duration
func (c Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// GetConfigDir returns the configuration directory path.
// FUREAL_HOME takes precedence over ~/.fureal.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".fureal"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetTranscriptDir returns the transcript directory from config, creating it if necessary
func GetTranscriptDir(cfg Config) (string, error) {
	dir := cfg.TranscriptDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "transcripts")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create transcript directory: %w", err)
	}
	return dir, nil
}

// GetLogPath returns the log file path from config
func GetLogPath(cfg Config) (string, error) {
	if cfg.Logging.File != "" {
		return cfg.Logging.File, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "logs", "fureal.log"), nil
}

// LoadConfig loads the configuration from disk and applies environment
// overrides. A missing file yields the defaults.
func LoadConfig() (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile loads the configuration file without environment overrides,
// which is what SaveConfig should write back.
func LoadFile() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Parse decodes a config document on top of the defaults. Comments and
// trailing commas are accepted.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()

	standard, err := hujson.Standardize(data)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := json.Unmarshal(standard, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(EnvGlamourStyle); v != "" {
		cfg.Markdown.Style = v
	}
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setters maps a dotted key to the function that assigns it
var setters = map[string]func(*Config, string) error{
	"backend_url":     func(c *Config, v string) error { c.BackendURL = v; return nil },
	"chat_path":       func(c *Config, v string) error { c.ChatPath = v; return nil },
	"request_timeout": func(c *Config, v string) error { return setInt(&c.RequestTimeout, v) },
	"audio_player":    func(c *Config, v string) error { c.AudioPlayer = v; return nil },
	"copy_to_clipboard": func(c *Config, v string) error {
		return setBool(&c.CopyToClipboard, v)
	},
	"tui_theme":      func(c *Config, v string) error { c.TUITheme = v; return nil },
	"transcript_dir": func(c *Config, v string) error { c.TranscriptDir = v; return nil },
	"markdown.style": func(c *Config, v string) error { c.Markdown.Style = v; return nil },
	"markdown.enable_emoji": func(c *Config, v string) error {
		return setBool(&c.Markdown.EnableEmoji, v)
	},
	"markdown.preserve_newlines": func(c *Config, v string) error {
		return setBool(&c.Markdown.PreserveNewLines, v)
	},
	"markdown.table_wrap": func(c *Config, v string) error {
		return setBool(&c.Markdown.TableWrap, v)
	},
	"markdown.inline_table_links": func(c *Config, v string) error {
		return setBool(&c.Markdown.InlineTableLinks, v)
	},
	"logging.enabled": func(c *Config, v string) error { return setBool(&c.Logging.Enabled, v) },
	"logging.level": func(c *Config, v string) error {
		switch v {
		case "debug", "info", "warn", "error":
			c.Logging.Level = v
			return nil
		}
		return fmt.Errorf("invalid log level %q (use debug, info, warn or error)", v)
	},
	"logging.file": func(c *Config, v string) error { c.Logging.File = v; return nil },
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns value to the setting named by key
func (c *Config) Set(key, value string) error {
	set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	return set(c, strings.TrimSpace(value))
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid boolean %q", v)
	}
	*dst = b
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid non-negative integer %q", v)
	}
	*dst = n
	return nil
}
