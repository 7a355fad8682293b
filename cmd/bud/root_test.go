package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDefaultConfigFlagPrintsValidJSON(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--default-config"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(out.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if _, ok := parsed["workers"]; !ok {
		t.Errorf("expected a workers key in the default config output")
	}
}

func TestVersionFlagPrintsVMajorMinor(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out.String()), "v") {
		t.Errorf("expected version output to start with 'v', got %q", out.String())
	}
}

func TestNoArgsPrintsUsageAndExitsNonZero(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if err == nil {
		t.Fatalf("Execute: expected a non-nil error so main() exits non-zero, got nil")
	}
	if !errors.Is(err, errNoConfig) {
		t.Errorf("Execute: got error %v, want errNoConfig", err)
	}
	if !strings.Contains(out.String(), "Usage") {
		t.Errorf("expected usage text, got %q", out.String())
	}
}
