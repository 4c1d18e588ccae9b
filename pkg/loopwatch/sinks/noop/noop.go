// Package noop provides a sink that discards all records.
// Useful for disabling record forwarding without nil checks.
package noop

import (
	"context"

	"github.com/strongdm/ai-loopwatch/pkg/loopwatch"
)

// noopSink discards all records.
type noopSink struct{}

// NewNoopSink creates a sink that discards everything.
func NewNoopSink() loopwatch.Sink {
	return &noopSink{}
}

// Write discards the record.
func (s *noopSink) Write(ctx context.Context, rec loopwatch.Record) error {
	return nil
}

// Flush is a no-op.
func (s *noopSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *noopSink) Close() error {
	return nil
}
