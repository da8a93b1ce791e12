// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/askterm/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates an invalid configuration
	ExitConfigError = 3
	// ExitExchangeFailed indicates a strict ask whose exchange failed
	ExitExchangeFailed = 5
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports bad arguments or flags.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError formats a UsageError.
func NewUsageError(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExchangeError reports a failed exchange under --strict. The apology has
// already been printed by then.
type ExchangeError struct {
	SessionID string
	Err       error
}

func (e *ExchangeError) Error() string {
	if e.Err == nil {
		return "exchange failed"
	}
	return "exchange failed: " + e.Err.Error()
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}

	var exchange *ExchangeError
	if errors.As(err, &exchange) {
		return ExitExchangeFailed
	}

	var invalid config.ValidateErrors
	if errors.As(err, &invalid) {
		return ExitConfigError
	}

	return ExitGeneralError
}
