package audit

import (
	"context"
	"testing"
	"time"

	"scoperoot-hq/scoperoot/pkg/policy"
)

func waitForSize(t *testing.T, store *MemoryStore, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.Size() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected %d stored records, got %d", want, store.Size())
}

// TestRecorder_Record tests that decisions reach the store asynchronously
func TestRecorder_Record(t *testing.T) {
	store := NewMemoryStore()
	recorder := NewRecorder(store, nil, nil)
	defer recorder.Close()

	d := policy.Decision{Allowed: false, Reason: policy.ReasonHardDenied, Path: "src/.env"}
	recorder.Record("read_text", d, policy.OpRead)

	waitForSize(t, store, 1)

	records, err := store.Query(context.Background(), &Query{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	got := records[0]
	if got.ID == "" {
		t.Error("Expected a generated record ID")
	}
	if got.Tool != "read_text" {
		t.Errorf("Expected tool read_text, got %q", got.Tool)
	}
	if got.Operation != "read" {
		t.Errorf("Expected operation read, got %q", got.Operation)
	}
	if got.Path != "src/.env" {
		t.Errorf("Expected path src/.env, got %q", got.Path)
	}
	if got.Allowed {
		t.Error("Expected denied record")
	}
	if got.Reason != "hard_denied" {
		t.Errorf("Expected reason hard_denied, got %q", got.Reason)
	}
}

// TestRecorder_Disabled tests that a disabled recorder writes nothing
func TestRecorder_Disabled(t *testing.T) {
	store := NewMemoryStore()
	cfg := DefaultRecorderConfig()
	cfg.Enabled = false
	recorder := NewRecorder(store, cfg, nil)

	recorder.Record("read_text", policy.Decision{Allowed: true, Reason: policy.ReasonAllowed, Path: "a.txt"}, policy.OpRead)
	recorder.Close()

	if store.Size() != 0 {
		t.Errorf("Expected no records when disabled, got %d", store.Size())
	}
}

// TestRecorder_CloseDrains tests that Close flushes buffered records
func TestRecorder_CloseDrains(t *testing.T) {
	store := NewMemoryStore()
	recorder := NewRecorder(store, nil, nil)

	for i := 0; i < 20; i++ {
		recorder.Record("list_files", policy.Decision{Allowed: true, Reason: policy.ReasonAllowed, Path: "docs/a.md"}, policy.OpList)
	}
	recorder.Close()

	if store.Size() != 20 {
		t.Errorf("Expected 20 records after Close, got %d", store.Size())
	}
}

// TestRecorder_CloseIdempotent tests that Close may be called twice
func TestRecorder_CloseIdempotent(t *testing.T) {
	recorder := NewRecorder(NewMemoryStore(), nil, nil)
	recorder.Close()
	recorder.Close()
}
