// Package audit is the append-only system log. Writes are best effort: they run after
// the business transaction has committed and never fail the caller.
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultActor = "System"

// swagger:model
type Entry struct {
	ID          int64     `json:"log_id"`
	Description string    `json:"log_description"`
	CreatedBy   string    `json:"log_created_by"`
	DateTime    time.Time `json:"log_datetime"`
}

// Sink accepts audit descriptions. Record must not block on storage.
type Sink interface {
	Record(description, actor string)
}

type Store interface {
	Insert(ctx context.Context, description, actor string) error
	List(ctx context.Context) ([]Entry, error)
}

type Recorder struct {
	store   Store
	log     *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewRecorder(store Store, log *zap.Logger, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Recorder{store: store, log: log, timeout: timeout}
}

// Record queues one entry and returns immediately.
func (r *Recorder) Record(description, actor string) {
	if actor == "" {
		actor = DefaultActor
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.log.Warn("audit entry dropped after close", zap.String("description", description))
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.store.Insert(ctx, description, actor); err != nil {
			r.log.Error("audit write failed",
				zap.String("description", description),
				zap.String("actor", actor),
				zap.Error(err))
		}
	}()
}

// Close stops accepting entries and waits for in-flight writes.
func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}

// List returns the log newest first.
func (r *Recorder) List(ctx context.Context) ([]Entry, error) {
	return r.store.List(ctx)
}
