package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"scoperoot-hq/scoperoot/pkg/policy"
	"scoperoot-hq/scoperoot/pkg/share"
)

func newTestHandlers(t *testing.T, allowRules string) *toolHandlers {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		".scoperoot-allow": allowRules,
		"README.md":        "# readme\n",
		"src/main.py":      "print('hello')\n",
		"src/.env":         "SECRET=1\n",
		"notes/private.txt": "private\n",
	}
	for name, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	loader := policy.NewLoader(filepath.Join(root, ".scoperoot-allow"), nil)
	store := policy.NewStore(loader, nil)
	gate, err := policy.NewGate(root, store, nil)
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}

	return &toolHandlers{
		service: share.NewService(gate, 0, nil),
		logger:  slog.Default(),
	}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if len(result.Content) != 1 {
		t.Fatalf("Expected 1 content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

// TestListFiles tests the list_files tool over a mixed tree
func TestListFiles(t *testing.T) {
	h := newTestHandlers(t, "README.md\nsrc/**\n")

	result, err := h.listFiles(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("listFiles failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %s", resultText(t, result))
	}

	var files []string
	if err := json.Unmarshal([]byte(resultText(t, result)), &files); err != nil {
		t.Fatalf("Expected JSON array, got %q", resultText(t, result))
	}

	want := []string{".scoperoot-allow", "README.md", "src/main.py"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Expected files %v, got %v", want, files)
	}
}

// TestListFiles_DeniedPrefix tests that an inaccessible prefix is denied uniformly
func TestListFiles_DeniedPrefix(t *testing.T) {
	h := newTestHandlers(t, "src/**\n")

	for _, prefix := range []string{"../outside", ".git"} {
		result, err := h.listFiles(context.Background(), callRequest(map[string]any{"prefix": prefix}))
		if err != nil {
			t.Fatalf("listFiles failed: %v", err)
		}
		if !result.IsError {
			t.Errorf("Expected error result for prefix %q", prefix)
		}
		if got := resultText(t, result); got != deniedMessage {
			t.Errorf("Expected uniform denial for prefix %q, got %q", prefix, got)
		}
	}
}

// TestReadText tests the read_text tool
func TestReadText(t *testing.T) {
	h := newTestHandlers(t, "src/**\n")

	result, err := h.readText(context.Background(), callRequest(map[string]any{"path": "src/main.py"}))
	if err != nil {
		t.Fatalf("readText failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %s", resultText(t, result))
	}
	if got := resultText(t, result); got != "print('hello')\n" {
		t.Errorf("Expected file contents, got %q", got)
	}
}

// TestReadText_UniformDenial tests that all denial reasons look identical
func TestReadText_UniformDenial(t *testing.T) {
	h := newTestHandlers(t, "src/**\n")

	paths := []string{
		"notes/private.txt",  // not listed
		"src/.env",           // hard denied
		"../../etc/passwd",   // escape
		"src/missing.py",     // allowed but absent
	}
	for _, path := range paths {
		result, err := h.readText(context.Background(), callRequest(map[string]any{"path": path}))
		if err != nil {
			t.Fatalf("readText failed for %q: %v", path, err)
		}
		if !result.IsError {
			t.Errorf("Expected error result for %q", path)
			continue
		}
		if got := resultText(t, result); got != deniedMessage {
			t.Errorf("Expected uniform denial for %q, got %q", path, got)
		}
	}
}

// TestReadText_MissingPath tests that the path argument is required
func TestReadText_MissingPath(t *testing.T) {
	h := newTestHandlers(t, "src/**\n")

	result, err := h.readText(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("readText failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result for missing path")
	}
}

// TestReadText_SizeCap tests the max_bytes request cap
func TestReadText_SizeCap(t *testing.T) {
	h := newTestHandlers(t, "src/**\n")

	result, err := h.readText(context.Background(), callRequest(map[string]any{
		"path":      "src/main.py",
		"max_bytes": 4,
	}))
	if err != nil {
		t.Fatalf("readText failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result for oversized file")
	}
	if got := resultText(t, result); got == deniedMessage {
		t.Error("Size cap should be reported distinctly from a denial")
	}
}
