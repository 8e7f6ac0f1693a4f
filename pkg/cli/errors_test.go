package cli

import (
	"errors"
	"fmt"
	"testing"

	"mercator-hq/cardvault/pkg/archive"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{err: NewConfigError("storage.backend", "unsupported backend"), want: "config error in storage.backend: unsupported backend"},
		{err: NewConfigError("", "failed to load config"), want: "config error: failed to load config"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("underlying error")
	err := NewCommandError("gc", underlying)

	if err.Error() != "command gc failed: underlying error" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Error("CommandError does not unwrap to its cause")
	}
}

func TestPartialFailureError(t *testing.T) {
	err := NewPartialFailureError("archive restore", 2, 5)
	if err.Error() != "command archive restore: 2 of 5 items failed" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "generic", err: errors.New("boom"), want: ExitFailure},
		{name: "config", err: NewConfigError("output", "bad"), want: ExitConfig},
		{name: "wrapped config", err: fmt.Errorf("startup: %w", NewConfigError("", "bad")), want: ExitConfig},
		{name: "partial", err: NewPartialFailureError("archive delete", 1, 3), want: ExitPartialFailure},
		{name: "not found", err: NewCommandError("archive show", archive.NewNotFoundError(archive.CollectionTrash, "p1")), want: ExitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
