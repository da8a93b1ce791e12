// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for askterm.
//
// Supports TOML, YAML and JSON configuration formats, with sensible defaults,
// a .env file, environment variable overrides, validation and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - TransportConfig: Answering service endpoint, token and limits
//   - MessagesConfig: Fixed greeting and notice texts
//   - UIConfig, RenderConfig: Presentation settings (reloadable)
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ASKTERM_*), including those set in ./.env
//   - --config PATH, or the first of ~/.askterm/config.{toml,yaml,yml,json}
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ValidateForExchange(); err != nil {
//	    return err
//	}
package config
