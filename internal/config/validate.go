// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jeranaias/askterm/internal/logging"
	"github.com/jeranaias/askterm/internal/render"
)

// minWrapWidth is the narrowest fixed wrap width accepted.
const minWrapWidth = 20

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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed validation.
func (e ValidateErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validate checks every setting. An empty endpoint is allowed here; commands
// that talk to the service call ValidateForExchange.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Transport.Endpoint != "" {
		if err := ValidateEndpoint(c.Transport.Endpoint); err != nil {
			errs = append(errs, ValidationError{Field: "transport.endpoint", Message: err.Error()})
		}
	}
	if d, err := time.ParseDuration(c.Transport.Timeout); err != nil {
		errs = append(errs, ValidationError{
			Field:   "transport.timeout",
			Message: fmt.Sprintf("invalid duration '%s'", c.Transport.Timeout),
		})
	} else if d <= 0 {
		errs = append(errs, ValidationError{Field: "transport.timeout", Message: "must be positive"})
	}
	if c.Transport.RatePerMinute < 0 {
		errs = append(errs, ValidationError{Field: "transport.rate_per_minute", Message: "must be 0 (unlimited) or positive"})
	}
	if c.Transport.MaxResponseBytes <= 0 {
		errs = append(errs, ValidationError{Field: "transport.max_response_bytes", Message: "must be positive"})
	}

	if !render.ValidTheme(c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(render.Themes(), ", ")),
		})
	}
	if !render.ValidCodeStyle(c.UI.CodeStyle) {
		errs = append(errs, ValidationError{
			Field:   "ui.code_style",
			Message: fmt.Sprintf("unknown chroma style '%s'", c.UI.CodeStyle),
		})
	}

	if c.Render.WrapWidth != 0 && c.Render.WrapWidth < minWrapWidth {
		errs = append(errs, ValidationError{
			Field:   "render.wrap_width",
			Message: fmt.Sprintf("must be 0 (follow window) or at least %d", minWrapWidth),
		})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{Field: "log.level", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateForExchange validates the config and requires an endpoint.
func (c *Config) ValidateForExchange() error {
	var errs ValidateErrors
	if err := c.Validate(); err != nil {
		if ve, ok := err.(ValidateErrors); ok {
			errs = append(errs, ve...)
		}
	}
	if c.Transport.Endpoint == "" {
		errs = append(errs, ValidationError{
			Field:   "transport.endpoint",
			Message: "not configured; set it in the config file or " + EnvEndpoint,
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateEndpoint requires an absolute http or https URL with a host.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
