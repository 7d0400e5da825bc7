// Package audit persists access decisions for later review.
//
// Every evaluation made by the policy gate can be recorded: which path was
// requested, by which tool, and why it was allowed or denied. Records are
// written asynchronously so the request path never blocks on storage.
//
// # Core Components
//
//   - Record: one persisted access decision
//   - Store: the storage interface, with SQLite and in-memory backends
//   - Recorder: async writer feeding a Store
//   - Pruner: retention enforcement, optionally cron-scheduled
//
// # Basic Usage
//
//	store, err := audit.NewSQLiteStore(nil, logger)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	recorder := audit.NewRecorder(store, nil, logger)
//	defer recorder.Close()
//
//	gate.OnDecision(func(d policy.Decision, op policy.Operation, _ time.Duration) {
//		recorder.Record("", d, op)
//	})
//
// The decision Reason is stored here for the host's benefit only. Remote
// callers never see it.
package audit
