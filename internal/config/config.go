// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/askterm/internal/client"
	"github.com/jeranaias/askterm/internal/model"
	"github.com/jeranaias/askterm/internal/render"
	"github.com/jeranaias/askterm/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete askterm configuration.
type Config struct {
	Transport TransportConfig `toml:"transport" json:"transport" yaml:"transport"`
	Messages  MessagesConfig  `toml:"messages" json:"messages" yaml:"messages"`
	UI        UIConfig        `toml:"ui" json:"ui" yaml:"ui"`
	Render    RenderConfig    `toml:"render" json:"render" yaml:"render"`
	Log       LogConfig       `toml:"log" json:"log" yaml:"log"`
}

// TransportConfig describes the answering service.
type TransportConfig struct {
	// Endpoint is the absolute http(s) URL queries are posted to.
	Endpoint string `toml:"endpoint" json:"endpoint" yaml:"endpoint"`
	// Token is sent as a bearer token when set.
	Token string `toml:"token" json:"token" yaml:"token"`
	// Timeout is a duration string, e.g. "60s".
	Timeout string `toml:"timeout" json:"timeout" yaml:"timeout"`
	// RatePerMinute caps outgoing requests (0 = unlimited).
	RatePerMinute int `toml:"rate_per_minute" json:"rate_per_minute" yaml:"rate_per_minute"`
	// MaxResponseBytes caps the reply body size.
	MaxResponseBytes int64 `toml:"max_response_bytes" json:"max_response_bytes" yaml:"max_response_bytes"`
}

// TimeoutDuration parses Timeout, falling back to the client default.
func (t TransportConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(t.Timeout)
	if err != nil || d <= 0 {
		return client.DefaultTimeout
	}
	return d
}

// MessagesConfig holds the fixed texts shown by the client itself.
type MessagesConfig struct {
	Greeting string `toml:"greeting" json:"greeting" yaml:"greeting"`
	Apology  string `toml:"apology" json:"apology" yaml:"apology"`
	NoReply  string `toml:"no_reply" json:"no_reply" yaml:"no_reply"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Title is shown in the header.
	Title string `toml:"title" json:"title" yaml:"title"`
	// Theme is one of auto, dark, light, dracula, notty, ascii.
	Theme string `toml:"theme" json:"theme" yaml:"theme"`
	// CodeStyle is a chroma style name.
	CodeStyle string `toml:"code_style" json:"code_style" yaml:"code_style"`
	// ShowTimestamps shows HH:MM under each message.
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps" yaml:"show_timestamps"`
	// LineNumbers numbers lines in code blocks.
	LineNumbers bool `toml:"line_numbers" json:"line_numbers" yaml:"line_numbers"`
	// Footer is the disclaimer under the input box. Empty hides it.
	Footer string `toml:"footer" json:"footer" yaml:"footer"`
}

// RenderConfig controls reply rendering.
type RenderConfig struct {
	// SanitizeHTML passes exported HTML through a sanitizer.
	SanitizeHTML bool `toml:"sanitize_html" json:"sanitize_html" yaml:"sanitize_html"`
	// WrapWidth fixes the wrap width (0 = follow the window).
	WrapWidth int `toml:"wrap_width" json:"wrap_width" yaml:"wrap_width"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// Path is the log file; "-" is stderr and "off" disables logging.
	Path  string `toml:"path" json:"path" yaml:"path"`
	Level string `toml:"level" json:"level" yaml:"level"`
}

// LogPath returns the expanded log path, or "" when logging is off.
func (l LogConfig) LogPath() string {
	if strings.EqualFold(l.Path, "off") {
		return ""
	}
	return util.ExpandHome(l.Path)
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultFooter is the disclaimer shown under the input box.
const DefaultFooter = "AI can make mistakes. Consider checking important information."

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Transport: TransportConfig{
			Endpoint:         "",
			Timeout:          client.DefaultTimeout.String(),
			RatePerMinute:    0, // unlimited
			MaxResponseBytes: client.MaxResponseSize,
		},

		Messages: MessagesConfig{
			Greeting: model.DefaultGreeting,
			Apology:  model.DefaultApology,
			NoReply:  model.DefaultNoReply,
		},

		UI: UIConfig{
			Title:          "askterm",
			Theme:          render.ThemeAuto,
			CodeStyle:      render.DefaultCodeStyle,
			ShowTimestamps: true,
			Footer:         DefaultFooter,
		},

		Render: RenderConfig{
			SanitizeHTML: false,
			WrapWidth:    0,
		},

		Log: LogConfig{
			Path:  "~/.askterm/askterm.log",
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// candidateNames are tried in order inside ConfigDir.
var candidateNames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// ConfigDir returns the askterm configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".askterm"), nil
}

// DefaultPath returns the path of the TOML config file.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, candidateNames[0]), nil
}

// FindConfigFile returns the first existing config file in ConfigDir, or ""
// when there is none.
func FindConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// ensureSecurePermissions tightens config files to 0600; they may hold a
// token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the config file found by FindConfigFile, or the defaults when
// there is none. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		return nil, err
	}
	if path == "" {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		fillDefaults(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file. The format follows
// the extension; anything other than .json, .yaml or .yml is TOML.
func LoadFromPath(path string) (*Config, error) {
	path = util.ExpandHome(path)
	if err := ensureSecurePermissions(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile decodes the file at path over the defaults. Environment
// overrides are not applied and the result is not validated, so it is safe
// to modify and Save.
func ReadFile(path string) (*Config, error) {
	path = util.ExpandHome(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := decode(cfg, path, data); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	fillDefaults(cfg)
	return cfg, nil
}

func decode(cfg *Config, path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to decode TOML: %w", err)
		}
	}
	return nil
}

// fillDefaults fills in any values a file blanked out.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Transport.Timeout == "" {
		cfg.Transport.Timeout = defaults.Transport.Timeout
	}
	if cfg.Transport.MaxResponseBytes == 0 {
		cfg.Transport.MaxResponseBytes = defaults.Transport.MaxResponseBytes
	}
	if cfg.Messages.Greeting == "" {
		cfg.Messages.Greeting = defaults.Messages.Greeting
	}
	if cfg.Messages.Apology == "" {
		cfg.Messages.Apology = defaults.Messages.Apology
	}
	if cfg.Messages.NoReply == "" {
		cfg.Messages.NoReply = defaults.Messages.NoReply
	}
	if cfg.UI.Title == "" {
		cfg.UI.Title = defaults.UI.Title
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.CodeStyle == "" {
		cfg.UI.CodeStyle = defaults.UI.CodeStyle
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = defaults.Log.Path
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

const fileHeader = "# askterm configuration file\n# Generated by askterm - edit with care\n\n"

// Save writes cfg to path with 0600 permissions. The format follows the
// extension, as in LoadFromPath.
func Save(cfg *Config, path string) error {
	path = util.ExpandHome(path)
	data, err := Encode(cfg, filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Encode serializes cfg for the given file extension.
func Encode(cfg *Config, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return append(data, '\n'), nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return append([]byte(fileHeader), data...), nil
	default:
		var buf bytes.Buffer
		buf.WriteString(fileHeader)
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted returns a copy with the token masked.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.Transport.Token != "" {
		safe.Transport.Token = util.RedactSecret(safe.Transport.Token)
	}
	return safe
}

// String returns the config as JSON with the token redacted.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}
