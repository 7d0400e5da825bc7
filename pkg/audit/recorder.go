package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"scoperoot-hq/scoperoot/pkg/policy"
)

// RecorderConfig contains configuration for the decision recorder.
type RecorderConfig struct {
	// Enabled enables decision recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder persists access decisions to an audit store. Records are written
// asynchronously so evaluations never block on storage.
type Recorder struct {
	store      Store
	config     *RecorderConfig
	recordChan chan *Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewRecorder creates a decision recorder backed by the given store and
// starts its background writer.
func NewRecorder(store Store, config *RecorderConfig, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		store:      store,
		config:     config,
		recordChan: make(chan *Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// Record enqueues one access decision for persistence. It never blocks: if
// the buffer is full the record is dropped and a warning is logged.
func (r *Recorder) Record(tool string, d policy.Decision, op policy.Operation) {
	if !r.config.Enabled {
		return
	}

	record := &Record{
		ID:        uuid.New().String(),
		Time:      time.Now().UTC(),
		Tool:      tool,
		Operation: op.String(),
		Path:      d.Path,
		Allowed:   d.Allowed,
		Reason:    d.Reason.String(),
	}

	select {
	case r.recordChan <- record:
	case <-r.done:
	default:
		r.logger.Warn("audit buffer full, dropping record",
			"path", record.Path,
			"reason", record.Reason,
		)
	}
}

// worker drains the record channel and writes to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.write(record)
		case <-r.done:
			// Drain remaining records before exiting.
			for {
				select {
				case record := <-r.recordChan:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.store.Append(ctx, record); err != nil {
		r.logger.Error("failed to persist audit record",
			"record_id", record.ID,
			"error", err,
		)
	}
}

// Close stops the background writer after draining buffered records.
// The underlying store is not closed.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}
