// sink.go defines the Sink interface for classified record destinations.

package loopwatch

import "context"

// Sink is the destination for classified error records.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Write persists a record. Called after classification.
	// Implementations should be idempotent when possible.
	Write(ctx context.Context, rec Record) error

	// Flush ensures any buffered records are persisted.
	// For synchronous sinks, this may be a no-op.
	Flush(ctx context.Context) error

	// Close releases resources held by the sink.
	// After Close is called, Write and Flush should return errors.
	Close() error
}
