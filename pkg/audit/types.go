package audit

import (
	"context"
	"fmt"
	"time"
)

// Record is one persisted access decision.
type Record struct {
	// ID is a UUIDv4 assigned when the record is created.
	ID string

	// Time is when the decision was made.
	Time time.Time

	// Tool is the tool that triggered the evaluation ("read_text",
	// "list_files"), or empty for decisions outside a tool call.
	Tool string

	// Operation is the evaluated operation ("read", "list").
	Operation string

	// Path is the normalized relative path that was evaluated.
	Path string

	// Allowed reports the decision outcome.
	Allowed bool

	// Reason is the decision reason ("allowed", "not_listed",
	// "hard_denied", "path_escape").
	Reason string
}

// Query contains filters for retrieving audit records.
type Query struct {
	// StartTime filters records at or after this time.
	StartTime *time.Time

	// EndTime filters records at or before this time.
	EndTime *time.Time

	// Tool filters by tool name.
	Tool string

	// Reason filters by decision reason.
	Reason string

	// Allowed filters by outcome when set.
	Allowed *bool

	// Limit caps the number of returned records. 0 means the store default.
	Limit int

	// Offset skips the first N matching records.
	Offset int
}

// Store persists and retrieves audit records.
type Store interface {
	// Append persists a record.
	Append(ctx context.Context, record *Record) error

	// Query retrieves records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records older than the cutoff and returns the
	// number deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOverCount removes the oldest records until at most max remain
	// and returns the number deleted.
	DeleteOverCount(ctx context.Context, max int64) (int64, error)

	// Close releases resources held by the store.
	Close() error
}

// StorageError wraps a failure in a storage backend.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s failed: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
