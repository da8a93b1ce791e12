// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvEndpoint  = "ASKTERM_ENDPOINT"
	EnvToken     = "ASKTERM_TOKEN"
	EnvTimeout   = "ASKTERM_TIMEOUT"
	EnvRate      = "ASKTERM_RATE_PER_MINUTE"
	EnvTheme     = "ASKTERM_THEME"
	EnvCodeStyle = "ASKTERM_CODE_STYLE"
	EnvLogLevel  = "ASKTERM_LOG_LEVEL"
	EnvLogPath   = "ASKTERM_LOG_PATH"
)

// LoadDotEnv loads dir/.env into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - ASKTERM_ENDPOINT: overrides transport.endpoint
//   - ASKTERM_TOKEN: overrides transport.token
//   - ASKTERM_TIMEOUT: overrides transport.timeout
//   - ASKTERM_RATE_PER_MINUTE: overrides transport.rate_per_minute
//   - ASKTERM_THEME: overrides ui.theme
//   - ASKTERM_CODE_STYLE: overrides ui.code_style
//   - ASKTERM_LOG_LEVEL: overrides log.level
//   - ASKTERM_LOG_PATH: overrides log.path
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Transport.Endpoint = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Transport.Token = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		c.Transport.Timeout = v
	}
	if v := os.Getenv(EnvRate); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Transport.RatePerMinute = n
		}
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv(EnvCodeStyle); v != "" {
		c.UI.CodeStyle = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogPath); v != "" {
		c.Log.Path = v
	}
}
