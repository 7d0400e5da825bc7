// Package policy implements the access-control engine that decides, for
// every candidate relative path, whether a read or list operation may
// proceed against the shared root.
//
// # Core Components
//
// Pattern compiles one glob-style allow file line into a predicate over
// normalized relative paths. Matching is segment-wise: "*" matches within a
// single path segment, "**" matches any number of whole segments including
// zero, and literals match exactly (case-sensitive).
//
// RuleSet is one immutable snapshot of the policy: the ordered allow
// patterns plus the fixed built-in hard-deny patterns. Hard-deny blocks
// common secret material (.env, *.pem, id_rsa keys, .git, .venv)
// unconditionally, even when an allow pattern also matches.
//
// Loader parses the allow file into a candidate RuleSet with atomic
// whole-file rejection: one malformed line discards the entire candidate so
// a partially-parsed file can never silently narrow or widen exposure. A
// missing allow file yields an empty allow list, i.e. default-deny.
//
// Store publishes the active RuleSet through an atomic pointer. Readers are
// lock-free and always see a complete snapshot; reloads parse into a private
// candidate and only the final pointer swap is synchronized. The fingerprint
// (modification time, size, BLAKE3 content hash) of the last successful load
// gates the cheap per-evaluation change check.
//
// Watcher adds fsnotify-based push reloads with debouncing on top of the
// per-evaluation stat check.
//
// Gate is the public entry point: it normalizes the requested path, rejects
// root escapes (".." traversal, absolute paths, symlinks pointing outside
// the root), triggers the reload check, and evaluates hard-deny before
// allow.
//
// # Basic Usage
//
//	loader := policy.NewLoader(filepath.Join(root, ".scoperoot-allow"), logger)
//	store := policy.NewStore(loader, logger)
//	store.Reload()
//
//	gate, err := policy.NewGate(root, store, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d := gate.Evaluate("src/main.go", policy.OpRead)
//	if !d.Allowed {
//	    // surface a uniform "not accessible" error to the caller
//	}
//
// # Thread Safety
//
// Any number of goroutines may call Gate.Evaluate and Store.Current
// concurrently with reloads. An evaluation already in progress when a swap
// lands completes against the RuleSet it started with (snapshot isolation).
// No error in this package is fatal to the host: the engine degrades to
// deny-by-default rather than ever failing open.
package policy
