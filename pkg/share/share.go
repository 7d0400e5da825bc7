package share

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"scoperoot-hq/scoperoot/pkg/policy"
)

// ErrNotAccessible is the uniform denial error for remote callers.
// Every negative outcome (not listed, hard-denied, escape attempt, missing
// file) surfaces as this same error so the response never leaks policy
// structure.
var ErrNotAccessible = errors.New("path not found or not accessible")

// TooLargeError is returned when a file exceeds the configured read cap.
type TooLargeError struct {
	// Size is the file size in bytes
	Size int64

	// Limit is the effective read cap in bytes
	Limit int64
}

// Error implements the error interface.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large (%d bytes, limit %d); raise max_bytes if needed", e.Size, e.Limit)
}

// DefaultMaxReadBytes is the read cap applied when the caller does not
// request one.
const DefaultMaxReadBytes = 200_000

// Service performs the actual filesystem operations under the shared root,
// consulting the access gate before every read and for every file that a
// listing would reveal.
type Service struct {
	gate         *policy.Gate
	maxReadBytes int64
	logger       *slog.Logger
}

// NewService creates a share service over the given gate. maxReadBytes
// bounds read_text responses; zero or negative selects DefaultMaxReadBytes.
func NewService(gate *policy.Gate, maxReadBytes int64, logger *slog.Logger) *Service {
	if maxReadBytes <= 0 {
		maxReadBytes = DefaultMaxReadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gate:         gate,
		maxReadBytes: maxReadBytes,
		logger:       logger.With("component", "share"),
	}
}

// Root returns the absolute shared root path.
func (s *Service) Root() string {
	return s.gate.Root()
}

// List walks the tree under prefix (relative to the shared root) and returns
// the sorted relative paths of all visible files. Hard-denied directories
// are pruned without being descended; files appear only when the gate allows
// them for listing.
func (s *Service) List(ctx context.Context, prefix string) ([]string, error) {
	if prefix == "" {
		prefix = "."
	}
	rel, err := s.gate.Resolve(prefix)
	if err != nil || !s.gate.CanTraverse(rel) {
		return nil, ErrNotAccessible
	}

	base := s.gate.Abs(rel)
	info, err := os.Stat(base)
	if err != nil {
		return nil, ErrNotAccessible
	}
	if !info.IsDir() {
		// A file prefix lists itself, if visible.
		if d := s.gate.Evaluate(rel, policy.OpList); d.Allowed {
			return []string{rel}, nil
		}
		return nil, ErrNotAccessible
	}

	var out []string
	err = filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable subtrees are simply invisible.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		entryRel, rerr := filepath.Rel(s.gate.Root(), path)
		if rerr != nil {
			return nil
		}
		entryRel = filepath.ToSlash(entryRel)

		if d.IsDir() {
			if entryRel == "." {
				return nil
			}
			if !s.gate.CanTraverse(entryRel) {
				return fs.SkipDir
			}
			return nil
		}

		if dec := s.gate.Evaluate(entryRel, policy.OpList); dec.Allowed {
			out = append(out, entryRel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing interrupted: %w", err)
	}

	sort.Strings(out)
	return out, nil
}

// Read returns the contents of a visible file. A positive maxBytes lowers
// the read cap for this call; it can never raise it past the service limit.
// Denials of any kind return ErrNotAccessible; an allowed file larger than
// the effective cap returns a TooLargeError.
func (s *Service) Read(ctx context.Context, requested string, maxBytes int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Callers may lower the cap but never raise it past the server limit.
	if maxBytes <= 0 || maxBytes > s.maxReadBytes {
		maxBytes = s.maxReadBytes
	}

	dec := s.gate.Evaluate(requested, policy.OpRead)
	if !dec.Allowed {
		s.logger.Debug("read denied",
			"path", dec.Path,
			"reason", dec.Reason.String(),
		)
		return nil, ErrNotAccessible
	}

	abs := s.gate.Abs(dec.Path)
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil, ErrNotAccessible
	}
	if info.Size() > maxBytes {
		return nil, &TooLargeError{Size: info.Size(), Limit: maxBytes}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, ErrNotAccessible
	}
	return data, nil
}
