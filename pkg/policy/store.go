package policy

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ReloadOutcome is the result of a reload check.
type ReloadOutcome int

const (
	// OutcomeNoChange means the allow file is unchanged and the active
	// RuleSet was left as-is.
	OutcomeNoChange ReloadOutcome = iota

	// OutcomeReloaded means a new RuleSet was installed atomically.
	OutcomeReloaded

	// OutcomeReloadFailed means the candidate rule set was rejected and the
	// previously active RuleSet remains in force.
	OutcomeReloadFailed
)

// String returns the outcome name for logging and metrics labels.
func (o ReloadOutcome) String() string {
	switch o {
	case OutcomeNoChange:
		return "no_change"
	case OutcomeReloaded:
		return "reloaded"
	case OutcomeReloadFailed:
		return "reload_failed"
	default:
		return "unknown"
	}
}

// ReloadEvent describes one completed reload attempt, for the host's
// observability hooks.
type ReloadEvent struct {
	// Outcome is the reload result
	Outcome ReloadOutcome

	// Patterns is the allow pattern count after the attempt
	Patterns int

	// Err is the parse or I/O error on OutcomeReloadFailed
	Err error

	// When is the time the attempt completed
	When time.Time
}

// Store holds the currently active RuleSet and the fingerprint of the last
// successful load. Reads are lock-free: the current RuleSet is published
// through an atomic pointer, and readers that obtained a reference before a
// swap keep evaluating against the old, fully consistent snapshot.
//
// Writes follow a single-writer discipline: only one reload runs at a time,
// the parse happens into a private candidate RuleSet, and only the final
// pointer swap is synchronized.
type Store struct {
	loader *Loader
	logger *slog.Logger

	current atomic.Pointer[RuleSet]

	// mu serializes reloads and guards the fingerprint. It is never held
	// across a read of the current RuleSet.
	mu sync.Mutex
	fp Fingerprint

	// onReload, when set, observes every completed reload attempt.
	onReload atomic.Pointer[func(ReloadEvent)]
}

// NewStore creates a Store in the default-deny state. Call Reload (or let
// the first CheckAndReload run) to pick up the allow file.
func NewStore(loader *Loader, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		loader: loader,
		logger: logger.With("component", "policy.store"),
	}
	s.current.Store(EmptyRuleSet())
	return s
}

// Current returns the active RuleSet. It never blocks and always returns a
// fully-formed snapshot, even while a reload is in flight.
func (s *Store) Current() *RuleSet {
	return s.current.Load()
}

// Fingerprint returns the fingerprint of the last successfully loaded allow
// file version.
func (s *Store) Fingerprint() Fingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fp
}

// OnReload registers an observer for reload attempts. Intended for wiring
// metrics and log sinks at the composition root.
func (s *Store) OnReload(fn func(ReloadEvent)) {
	s.onReload.Store(&fn)
}

// CheckAndReload compares the allow file against the stored fingerprint and
// reloads it if it changed. The common case is a single stat call.
//
// If another goroutine is already reloading, the check returns immediately
// with OutcomeNoChange: evaluations never queue behind a reload, they just
// use whichever snapshot is current.
func (s *Store) CheckAndReload() (ReloadOutcome, error) {
	if !s.mu.TryLock() {
		return OutcomeNoChange, nil
	}
	defer s.mu.Unlock()

	modTime, size, exists, err := s.loader.Stat()
	if err != nil {
		return s.failLocked(err)
	}

	if !exists {
		if s.fp.IsZero() && s.current.Load().Len() == 0 {
			return OutcomeNoChange, nil
		}
		// The allow file was removed: degrade to default-deny.
		return s.installLocked(EmptyRuleSet(), Fingerprint{})
	}

	if modTime.Equal(s.fp.ModTime) && size == s.fp.Size && !s.fp.IsZero() {
		return OutcomeNoChange, nil
	}

	return s.loadLocked()
}

// Reload loads the allow file unconditionally, blocking until any in-flight
// reload finishes. Used by the file watcher and by explicit reload requests.
func (s *Store) Reload() (ReloadOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// loadLocked reads and parses the allow file and installs the result.
// The fingerprint is only advanced on success, so a broken file is retried
// on every subsequent check until it parses or is fixed.
func (s *Store) loadLocked() (ReloadOutcome, error) {
	rs, fp, err := s.loader.Load()
	if err != nil {
		return s.failLocked(err)
	}

	// Timestamp changed but content did not: keep the active RuleSet
	// reference, just remember the new timestamp.
	if fp.Sum == s.fp.Sum && !s.fp.IsZero() && !fp.IsZero() {
		s.fp = fp
		return OutcomeNoChange, nil
	}

	return s.installLocked(rs, fp)
}

// installLocked publishes a new RuleSet atomically.
func (s *Store) installLocked(rs *RuleSet, fp Fingerprint) (ReloadOutcome, error) {
	s.current.Store(rs)
	s.fp = fp

	s.logger.Info("policy reloaded",
		"patterns", rs.Len(),
		"path", s.loader.Path(),
	)
	s.emit(ReloadEvent{Outcome: OutcomeReloaded, Patterns: rs.Len(), When: time.Now()})

	return OutcomeReloaded, nil
}

// failLocked records a failed reload attempt. The active RuleSet and its
// fingerprint stay untouched.
func (s *Store) failLocked(err error) (ReloadOutcome, error) {
	s.logger.Error("policy reload failed, keeping previous rules",
		"error", err,
		"path", s.loader.Path(),
	)
	s.emit(ReloadEvent{
		Outcome:  OutcomeReloadFailed,
		Patterns: s.current.Load().Len(),
		Err:      err,
		When:     time.Now(),
	})
	return OutcomeReloadFailed, err
}

func (s *Store) emit(ev ReloadEvent) {
	if fn := s.onReload.Load(); fn != nil {
		(*fn)(ev)
	}
}
