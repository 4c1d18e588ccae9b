// Package async provides a sink wrapper with a bounded queue so ingestion
// never blocks on a slow destination. Records are queued and processed in
// the background; oldest records are dropped when the queue is full.
package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/strongdm/ai-loopwatch/pkg/loopwatch"
)

// AsyncSinkOption configures the async sink.
type AsyncSinkOption func(*asyncSinkConfig)

type asyncSinkConfig struct {
	queueSize int
	onDropped func(count int)
}

// WithQueueSize sets the maximum number of queued records (default: 1000).
func WithQueueSize(size int) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithOnDropped sets a callback invoked when records are dropped due to
// queue overflow.
func WithOnDropped(fn func(count int)) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		c.onDropped = fn
	}
}

// asyncSink wraps a sink with a bounded queue.
type asyncSink struct {
	inner     loopwatch.Sink
	queue     chan loopwatch.Record
	done      chan struct{}
	closeOnce sync.Once
	closeMu   sync.Mutex
	closed    bool
	wg        sync.WaitGroup
	onDropped func(count int)
}

// NewAsyncSink wraps a sink with a bounded queue for async writes.
// Write() returns immediately; records are processed in the background.
// When the queue is full, the oldest record is dropped to make room.
func NewAsyncSink(inner loopwatch.Sink, opts ...AsyncSinkOption) loopwatch.Sink {
	cfg := &asyncSinkConfig{
		queueSize: 1000,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &asyncSink{
		inner:     inner,
		queue:     make(chan loopwatch.Record, cfg.queueSize),
		done:      make(chan struct{}),
		onDropped: cfg.onDropped,
	}

	s.wg.Add(1)
	go s.processLoop()

	return s
}

// processLoop drains the queue and writes to the inner sink.
func (s *asyncSink) processLoop() {
	defer s.wg.Done()
	for {
		select {
		case rec, ok := <-s.queue:
			if !ok {
				return
			}
			// Ignore errors from inner sink (fire and forget)
			_ = s.inner.Write(context.Background(), rec)
		case <-s.done:
			// Drain remaining records
			for {
				select {
				case rec, ok := <-s.queue:
					if !ok {
						return
					}
					_ = s.inner.Write(context.Background(), rec)
				default:
					return
				}
			}
		}
	}
}

// Write enqueues a record for async processing.
// Returns immediately. If the queue is full, drops the oldest record.
func (s *asyncSink) Write(ctx context.Context, rec loopwatch.Record) error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return errors.New("async sink is closed")
	}
	s.closeMu.Unlock()

	// Try to enqueue
	select {
	case s.queue <- rec:
		return nil
	default:
		// Queue is full - drop oldest and enqueue new
		s.dropOldestAndEnqueue(rec)
		return nil
	}
}

// dropOldestAndEnqueue drops the oldest record and enqueues the new one.
func (s *asyncSink) dropOldestAndEnqueue(rec loopwatch.Record) {
	// Try to read (drop) one record from the queue
	select {
	case <-s.queue:
		if s.onDropped != nil {
			s.onDropped(1)
		}
	default:
		// Queue was emptied by processor, try again
	}

	// Now try to enqueue again
	select {
	case s.queue <- rec:
	default:
		// Still full, just drop the new record
		if s.onDropped != nil {
			s.onDropped(1)
		}
	}
}

// Flush blocks until all queued records are processed.
func (s *asyncSink) Flush(ctx context.Context) error {
	// Wait for queue to drain by checking periodically
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if len(s.queue) == 0 {
				// Give a moment for the last record to be processed
				time.Sleep(10 * time.Millisecond)
				return s.inner.Flush(ctx)
			}
		}
	}
}

// Close stops the async processor and closes the inner sink.
func (s *asyncSink) Close() error {
	s.closeOnce.Do(func() {
		s.closeMu.Lock()
		s.closed = true
		s.closeMu.Unlock()

		// Signal done and wait for drain
		close(s.done)
		s.wg.Wait()
		close(s.queue)
	})

	return s.inner.Close()
}
