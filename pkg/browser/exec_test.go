package browser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveExecutableConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chrome-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveExecutable(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Fatalf("ResolveExecutable() = %q, want %q", got, path)
	}
}

func TestResolveExecutableConfiguredPathMissing(t *testing.T) {
	_, err := ResolveExecutable(filepath.Join(t.TempDir(), "no-such-binary"))
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Fatalf("ResolveExecutable() = %v, want ErrExecutableNotFound", err)
	}
}
