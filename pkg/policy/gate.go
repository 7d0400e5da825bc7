package policy

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Operation is the kind of file operation being evaluated.
type Operation int

const (
	// OpRead is a request to read a file's contents.
	OpRead Operation = iota

	// OpList is a request to include a file in a directory listing.
	OpList
)

// String returns the operation name for logging and metrics labels.
func (op Operation) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpList:
		return "list"
	default:
		return "unknown"
	}
}

// Reason explains an access decision.
type Reason int

const (
	// ReasonAllowed means an allow pattern matched and no hard-deny did.
	ReasonAllowed Reason = iota

	// ReasonNotListed means no allow pattern matched the path.
	ReasonNotListed

	// ReasonHardDenied means a built-in deny pattern matched the path.
	// Hard-deny wins even when an allow pattern also matches.
	ReasonHardDenied

	// ReasonPathEscape means the path resolved outside the shared root,
	// via ".." segments, an absolute path, or a symlink target.
	ReasonPathEscape
)

// String returns the reason name for logging and metrics labels.
func (r Reason) String() string {
	switch r {
	case ReasonAllowed:
		return "allowed"
	case ReasonNotListed:
		return "not_listed"
	case ReasonHardDenied:
		return "hard_denied"
	case ReasonPathEscape:
		return "path_escape"
	default:
		return "unknown"
	}
}

// Decision is the result of one access evaluation. It is a pure value,
// produced fresh per evaluation and never cached across reloads.
//
// The Reason is for the host's own logging and audit trail only: remote
// callers must see all denials identically, never learning whether a path
// was hard-denied, not listed, or an escape attempt.
type Decision struct {
	// Allowed reports whether the operation may proceed
	Allowed bool

	// Reason explains the decision
	Reason Reason

	// Path is the normalized relative path that was evaluated, or the raw
	// requested path when normalization itself failed
	Path string
}

// Gate is the public entry point of the policy engine. Every inbound file
// operation is evaluated against the current RuleSet after a cheap reload
// check, so the policy is never more stale than one file-change interval.
type Gate struct {
	root   string
	store  *Store
	logger *slog.Logger

	// onDecision, when set, observes every evaluation (metrics, audit).
	onDecision func(Decision, Operation, time.Duration)
}

// NewGate creates a gate over the shared root directory. The root is
// resolved to an absolute, symlink-free path once at construction; all
// requested paths are interpreted relative to it.
func NewGate(root string, store *Store, logger *slog.Logger) (*Gate, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shared root %q: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	return &Gate{
		root:   abs,
		store:  store,
		logger: logger.With("component", "policy.gate"),
	}, nil
}

// Root returns the absolute shared root path.
func (g *Gate) Root() string {
	return g.root
}

// OnDecision registers an observer invoked for every evaluation.
// Intended for wiring metrics and the audit trail at the composition root.
func (g *Gate) OnDecision(fn func(Decision, Operation, time.Duration)) {
	g.onDecision = fn
}

// Evaluate decides whether the requested path may be accessed.
//
// The path is normalized and checked for root escape first, then the reload
// check runs, then hard-deny patterns are evaluated before allow patterns.
// Evaluation never touches the filesystem outside the shared root.
func (g *Gate) Evaluate(requested string, op Operation) Decision {
	start := time.Now()
	d := g.evaluate(requested, op)
	if g.onDecision != nil {
		g.onDecision(d, op, time.Since(start))
	}
	return d
}

func (g *Gate) evaluate(requested string, op Operation) Decision {
	rel, err := g.Resolve(requested)
	if err != nil {
		return Decision{Allowed: false, Reason: ReasonPathEscape, Path: requested}
	}

	// A failed reload keeps the previous RuleSet in force and is logged by
	// the store; the evaluation proceeds against the current snapshot.
	_, _ = g.store.CheckAndReload()
	rs := g.store.Current()

	if rs.HardDenied(rel) {
		return Decision{Allowed: false, Reason: ReasonHardDenied, Path: rel}
	}
	if rs.Allowed(rel) {
		return Decision{Allowed: true, Reason: ReasonAllowed, Path: rel}
	}
	return Decision{Allowed: false, Reason: ReasonNotListed, Path: rel}
}

// CanTraverse reports whether a directory prefix may be descended into
// during a listing: the path must stay inside the root and must not be
// hard-denied. Individual files inside still need their own allow match.
func (g *Gate) CanTraverse(requested string) bool {
	rel, err := g.Resolve(requested)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return !g.store.Current().HardDenied(rel)
}

// Resolve normalizes a requested path to a slash-separated path relative to
// the shared root. It rejects absolute paths and any path that escapes the
// root after cleaning and symlink resolution. The root itself resolves to ".".
func (g *Gate) Resolve(requested string) (string, error) {
	if requested == "" {
		requested = "."
	}
	if filepath.IsAbs(requested) {
		return "", fmt.Errorf("absolute paths are not allowed")
	}

	joined := filepath.Join(g.root, filepath.FromSlash(requested))

	rel, err := filepath.Rel(g.root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the shared root")
	}

	// Resolve symlinks on the deepest existing prefix so a link pointing
	// outside the root cannot smuggle a path back in range. The target
	// file itself may not exist yet; fall back to its parent directory.
	resolved, rerr := filepath.EvalSymlinks(joined)
	if rerr != nil {
		if parent, perr := filepath.EvalSymlinks(filepath.Dir(joined)); perr == nil {
			resolved = filepath.Join(parent, filepath.Base(joined))
		} else {
			resolved = joined
		}
	}

	rel, err = filepath.Rel(g.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the shared root")
	}

	return filepath.ToSlash(rel), nil
}

// Abs maps a normalized relative path back to an absolute path inside the
// shared root. Intended for the filesystem layer after a positive decision.
func (g *Gate) Abs(rel string) string {
	return filepath.Join(g.root, filepath.FromSlash(rel))
}
