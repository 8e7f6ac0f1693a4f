package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"mercator-hq/cardvault/pkg/cli"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()
	Version = "0.1.0-test"
	GitCommit = "abc123"

	out, _, code := run(t, "version")
	if code != cli.ExitOK {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{"cardvault 0.1.0-test", "Git Commit: abc123", "Go Version:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	resetFlags(t)

	var stdout, stderr bytes.Buffer
	if code := execute(context.Background(), []string{"version", "-o", "json"}, &stdout, &stderr); code != cli.ExitOK {
		t.Fatalf("exit = %d, stderr: %s", code, stderr.String())
	}

	var info map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, stdout.String())
	}
	if info["version"] != Version {
		t.Errorf("version = %v, want %s", info["version"], Version)
	}
}

func TestVersionCommand_SkipsConfig(t *testing.T) {
	resetFlags(t)
	cfgFile = "/nonexistent/cardvault.yaml"

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"version", "--config", "/nonexistent/cardvault.yaml"}, &stdout, &stderr)
	if code != cli.ExitOK {
		t.Errorf("exit = %d, stderr: %s", code, stderr.String())
	}
}
