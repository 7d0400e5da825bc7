package policy

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func newTestGate(t *testing.T, allowContents string) (*Gate, string) {
	t.Helper()
	root := t.TempDir()
	if allowContents != "" {
		path := filepath.Join(root, ".scoperoot-allow")
		if err := os.WriteFile(path, []byte(allowContents), 0o644); err != nil {
			t.Fatalf("failed to write allow file: %v", err)
		}
	}
	store := NewStore(NewLoader(filepath.Join(root, ".scoperoot-allow"), nil), nil)
	gate, err := NewGate(root, store, nil)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}
	return gate, root
}

func TestGate_Evaluate_Allowed(t *testing.T) {
	gate, _ := newTestGate(t, "src/**\nREADME.md\n")

	d := gate.Evaluate("src/main.py", OpRead)
	if !d.Allowed {
		t.Errorf("Evaluate(src/main.py) denied, reason %v", d.Reason)
	}
	if d.Reason != ReasonAllowed {
		t.Errorf("Reason = %v, want %v", d.Reason, ReasonAllowed)
	}
	if d.Path != "src/main.py" {
		t.Errorf("Path = %q, want %q", d.Path, "src/main.py")
	}
}

func TestGate_Evaluate_NotListed(t *testing.T) {
	gate, _ := newTestGate(t, "src/**\n")

	d := gate.Evaluate("docs/guide.md", OpRead)
	if d.Allowed {
		t.Error("Evaluate(docs/guide.md) allowed, want denied")
	}
	if d.Reason != ReasonNotListed {
		t.Errorf("Reason = %v, want %v", d.Reason, ReasonNotListed)
	}
}

func TestGate_Evaluate_HardDenyOverridesAllow(t *testing.T) {
	gate, _ := newTestGate(t, "src/**\n")

	d := gate.Evaluate("src/.env", OpRead)
	if d.Allowed {
		t.Error("Evaluate(src/.env) allowed, want hard-denied")
	}
	if d.Reason != ReasonHardDenied {
		t.Errorf("Reason = %v, want %v", d.Reason, ReasonHardDenied)
	}
}

func TestGate_Evaluate_NoAllowFile_DefaultDeny(t *testing.T) {
	gate, _ := newTestGate(t, "")

	for _, p := range []string{"README.md", "src/a.go", "anything/at/all"} {
		d := gate.Evaluate(p, OpRead)
		if d.Allowed {
			t.Errorf("Evaluate(%q) allowed with no allow file", p)
		}
		if d.Reason != ReasonNotListed {
			t.Errorf("Evaluate(%q) reason = %v, want %v", p, d.Reason, ReasonNotListed)
		}
	}
}

func TestGate_Evaluate_PathEscape(t *testing.T) {
	gate, _ := newTestGate(t, "**\n")

	tests := []string{
		"../../etc/passwd",
		"..",
		"src/../../other",
		"/etc/passwd",
	}
	for _, p := range tests {
		d := gate.Evaluate(p, OpRead)
		if d.Allowed {
			t.Errorf("Evaluate(%q) allowed, want path-escape denial", p)
		}
		if d.Reason != ReasonPathEscape {
			t.Errorf("Evaluate(%q) reason = %v, want %v", p, d.Reason, ReasonPathEscape)
		}
	}
}

func TestGate_Evaluate_DotSegmentsNormalized(t *testing.T) {
	gate, _ := newTestGate(t, "src/**\n")

	// ".." that stays inside the root is fine after normalization.
	d := gate.Evaluate("src/sub/../main.py", OpRead)
	if !d.Allowed {
		t.Errorf("Evaluate(src/sub/../main.py) denied, reason %v", d.Reason)
	}
	if d.Path != "src/main.py" {
		t.Errorf("Path = %q, want %q", d.Path, "src/main.py")
	}
}

func TestGate_Evaluate_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not applicable on windows")
	}

	gate, root := newTestGate(t, "**\n")

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatalf("failed to write outside file: %v", err)
	}
	if err := os.Symlink(secret, filepath.Join(root, "link.txt")); err != nil {
		t.Fatalf("failed to create symlink: %v", err)
	}

	d := gate.Evaluate("link.txt", OpRead)
	if d.Allowed {
		t.Error("Evaluate(link.txt) allowed, want denial: symlink target escapes root")
	}
	if d.Reason != ReasonPathEscape {
		t.Errorf("Reason = %v, want %v", d.Reason, ReasonPathEscape)
	}
}

func TestGate_Evaluate_PicksUpPolicyEdits(t *testing.T) {
	gate, root := newTestGate(t, "src/**\n")

	if d := gate.Evaluate("docs/a.md", OpRead); d.Allowed {
		t.Fatal("docs/a.md allowed before policy edit")
	}

	fp := gate.store.Fingerprint()
	touch(t, filepath.Join(root, ".scoperoot-allow"), "docs/**\n", fp.ModTime)

	if d := gate.Evaluate("docs/a.md", OpRead); !d.Allowed {
		t.Errorf("docs/a.md denied after policy edit, reason %v", d.Reason)
	}
	if d := gate.Evaluate("src/a.py", OpRead); d.Allowed {
		t.Error("src/a.py still allowed after policy edit")
	}
}

func TestGate_OnDecision(t *testing.T) {
	gate, _ := newTestGate(t, "src/**\n")

	var got []Decision
	gate.OnDecision(func(d Decision, op Operation, elapsed time.Duration) {
		got = append(got, d)
	})

	gate.Evaluate("src/a.py", OpRead)
	gate.Evaluate("nope.txt", OpList)

	if len(got) != 2 {
		t.Fatalf("observed %d decisions, want 2", len(got))
	}
	if !got[0].Allowed || got[1].Allowed {
		t.Errorf("decisions = %+v, want allow then deny", got)
	}
}

func TestGate_CanTraverse(t *testing.T) {
	gate, _ := newTestGate(t, "src/**\n")

	tests := []struct {
		path string
		want bool
	}{
		{".", true},
		{"", true},
		{"src", true},
		{"docs", true}, // traversal is open; files inside still need allow
		{".git", false},
		{".venv/lib", false},
		{"../outside", false},
	}
	for _, tt := range tests {
		if got := gate.CanTraverse(tt.path); got != tt.want {
			t.Errorf("CanTraverse(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestGate_Resolve_Root(t *testing.T) {
	gate, _ := newTestGate(t, "")

	for _, p := range []string{"", "."} {
		rel, err := gate.Resolve(p)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", p, err)
		}
		if rel != "." {
			t.Errorf("Resolve(%q) = %q, want %q", p, rel, ".")
		}
	}
}
