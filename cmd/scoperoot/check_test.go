package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAllowFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".scoperoot-allow")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestCheckAllowFileValid(t *testing.T) {
	checkFlags.file = writeAllowFile(t, "src/**\ndocs/*.md\n# a comment\n")
	checkFlags.format = "text"

	if err := checkAllowFile(nil, nil); err != nil {
		t.Errorf("checkAllowFile() with valid file returned error: %v", err)
	}
}

func TestCheckAllowFileInvalid(t *testing.T) {
	checkFlags.file = writeAllowFile(t, "src/**\n/etc/absolute\n")
	checkFlags.format = "text"

	if err := checkAllowFile(nil, nil); err == nil {
		t.Error("checkAllowFile() with invalid file should return error")
	}
}

func TestCheckAllowFileNonexistent(t *testing.T) {
	checkFlags.file = filepath.Join(t.TempDir(), "missing")
	checkFlags.format = "text"

	if err := checkAllowFile(nil, nil); err == nil {
		t.Error("checkAllowFile() with nonexistent file should return error")
	}
}

func TestCheckAllowFileShadowedPattern(t *testing.T) {
	// ".env" parses fine but a built-in deny rule makes it inert.
	checkFlags.file = writeAllowFile(t, ".env\nsrc/**\n")
	checkFlags.format = "json"

	if err := checkAllowFile(nil, nil); err != nil {
		t.Errorf("checkAllowFile() with shadowed pattern returned error: %v", err)
	}
}

func TestCheckHonorsConfiguredAllowFileName(t *testing.T) {
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

	checkFlags.file = ""
	checkFlags.root = root
	checkFlags.format = "text"

	if err := checkAllowFile(nil, nil); err != nil {
		t.Errorf("checkAllowFile() with configured allow_file returned error: %v", err)
	}
}

func TestCheckCommandExists(t *testing.T) {
	if checkCmd == nil {
		t.Fatal("checkCmd is nil")
	}
	if checkCmd.Use != "check" {
		t.Errorf("checkCmd.Use = %q, want %q", checkCmd.Use, "check")
	}
	if checkCmd.RunE == nil {
		t.Error("checkCmd.RunE should not be nil")
	}
}
