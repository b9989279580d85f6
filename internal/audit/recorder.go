// Package audit keeps a best-effort, append-only trail of mutating actions.
// Writes happen on a background worker and never fail the caller.
package audit

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

const DefaultBufferSize = 256

// Recorder queues audit rows and writes them from one worker goroutine.
type Recorder struct {
	db      *gorm.DB
	queue   chan Log
	pending sync.WaitGroup
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	now     func() time.Time
}

// NewRecorder starts the worker. Close must be called to drain it.
func NewRecorder(db *gorm.DB, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	r := &Recorder{
		db:    db,
		queue: make(chan Log, bufferSize),
		done:  make(chan struct{}),
		now:   func() time.Time { return time.Now().UTC() },
	}
	go r.run()
	return r
}

// AutoMigrate creates the audit table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Log{})
}

// Record enqueues e. When the queue is full the entry is dropped.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		logger.Warn(ctx).Str("entity", e.EntityName).Str("action", e.Action).Msg("Audit recorder closed, entry dropped")
		return
	}

	r.pending.Add(1)
	select {
	case r.queue <- e.toLog(r.now()):
	default:
		r.pending.Done()
		logger.Warn(ctx).
			Str("entity", e.EntityName).
			Uint("entity_id", e.EntityID).
			Str("action", e.Action).
			Msg("Audit queue full, entry dropped")
	}
}

// Flush waits until every queued entry has been written or dropped, or ctx
// is done.
func (r *Recorder) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(flushed)
	}()
	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting entries and drains the queue.
func (r *Recorder) Close() {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
		<-r.done
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		r.write(entry)
		r.pending.Done()
	}
}

func (r *Recorder) write(entry Log) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		logger.Logger.Error().
			Err(err).
			Str("entity", entry.EntityName).
			Str("action", entry.Action).
			Msg("Failed to write audit log")
	}
}
