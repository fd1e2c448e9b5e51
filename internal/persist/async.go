package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	DefaultQueueSize = 64
	saveTimeout      = 10 * time.Second
)

var (
	ErrQueueFull = errors.New("persistence queue is full")
	ErrClosed    = errors.New("persistence writer is closed")
)

// AsyncWriter saves snapshots on a background goroutine so turns never wait
// for storage. When the queue is full the snapshot is dropped; a later save of
// the same session supersedes it anyway.
type AsyncWriter struct {
	next   Persister
	queue  chan *Snapshot
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncWriter(next Persister, queueSize int, log *zap.Logger) *AsyncWriter {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	w := &AsyncWriter{
		next:   next,
		queue:  make(chan *Snapshot, queueSize),
		logger: logger.OrNop(log),
	}

	w.wg.Add(1)
	go w.process()

	return w
}

// Save queues snap without blocking.
func (w *AsyncWriter) Save(_ context.Context, snap *Snapshot) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrClosed
	}

	select {
	case w.queue <- snap:
		return nil
	default:
		w.logger.Warn("persistence queue full, dropping snapshot",
			zap.String(logger.FieldSessionID, snap.SessionID),
			zap.Int("queue_len", len(w.queue)),
		)
		return ErrQueueFull
	}
}

// SaveWait queues snap, blocking until there is room in the queue or ctx is done.
func (w *AsyncWriter) SaveWait(ctx context.Context, snap *Snapshot) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrClosed
	}

	select {
	case w.queue <- snap:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SaveWait saves snap through p, waiting for queue room when p is asynchronous.
func SaveWait(ctx context.Context, p Persister, snap *Snapshot) error {
	if w, ok := p.(interface {
		SaveWait(context.Context, *Snapshot) error
	}); ok {
		return w.SaveWait(ctx, snap)
	}
	return p.Save(ctx, snap)
}

func (w *AsyncWriter) Load(ctx context.Context, id string) (*Snapshot, error) {
	return w.next.Load(ctx, id)
}

// Close drains queued snapshots and closes the underlying persister.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
	return w.next.Close()
}

func (w *AsyncWriter) process() {
	defer w.wg.Done()

	for snap := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := w.next.Save(ctx, snap); err != nil {
			w.logger.Error("failed to persist session",
				zap.String(logger.FieldSessionID, snap.SessionID),
				zap.Error(err),
			)
		} else {
			w.logger.Debug("session persisted",
				zap.String(logger.FieldSessionID, snap.SessionID),
				zap.Int("events", len(snap.Events)),
			)
		}
		cancel()
	}
}
