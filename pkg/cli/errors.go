package cli

import (
	"errors"
	"fmt"

	"mercator-hq/cardvault/pkg/archive"
)

// Process exit codes returned by ExitCode.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitConfig         = 2
	ExitPartialFailure = 3
	ExitNotFound       = 4
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// PartialFailureError reports a batch command where some items failed.
type PartialFailureError struct {
	Command string
	Failed  int
	Total   int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("command %s: %d of %d items failed", e.Command, e.Failed, e.Total)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// NewPartialFailureError creates a new PartialFailureError.
func NewPartialFailureError(command string, failed, total int) *PartialFailureError {
	return &PartialFailureError{Command: command, Failed: failed, Total: total}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var cfgErr *ConfigError
	var partial *PartialFailureError
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfig
	case errors.As(err, &partial):
		return ExitPartialFailure
	case errors.Is(err, archive.ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}
