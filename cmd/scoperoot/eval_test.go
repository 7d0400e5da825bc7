package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEvalPathsAllowed(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".scoperoot-allow"), []byte("src/**\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	evalFlags.root = root
	evalFlags.format = "json"

	// Only allowed paths: a denial would exit the process.
	if err := evalPaths(nil, []string{"src/main.py", "src/lib/util.py"}); err != nil {
		t.Errorf("evalPaths() returned error: %v", err)
	}
}

func TestEvalHonorsConfiguredAllowFileName(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "custom-allow"), []byte("src/**\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("share:\n  allow_file: custom-allow\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	prevCfg := cfgFile
	cfgFile = cfgPath
	defer func() { cfgFile = prevCfg }()

	evalFlags.root = root
	evalFlags.format = "json"

	// src/main.py is allowed only if the custom allow file was read.
	if err := evalPaths(nil, []string{"src/main.py"}); err != nil {
		t.Errorf("evalPaths() returned error: %v", err)
	}
}

func TestEvalCommandExists(t *testing.T) {
	if evalCmd == nil {
		t.Fatal("evalCmd is nil")
	}
	if evalCmd.Use == "" || evalCmd.RunE == nil {
		t.Error("evalCmd is not fully initialized")
	}
}
