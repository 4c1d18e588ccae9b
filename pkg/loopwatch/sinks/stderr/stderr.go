// Package stderr provides a sink that logs records to stderr in
// human-readable format. Useful for development and debugging.
package stderr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/strongdm/ai-loopwatch/pkg/loopwatch"
)

// maxMessageLen bounds the message line; agent tracebacks embedded in
// messages can run to many kilobytes.
const maxMessageLen = 512

// StderrSinkOption configures the stderr sink.
type StderrSinkOption func(*stderrSinkConfig)

type stderrSinkConfig struct {
	verbose bool
}

// WithVerbose enables full record details including snippets and tracebacks.
func WithVerbose() StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.verbose = true
	}
}

// stderrSink writes records to stderr in human-readable format.
type stderrSink struct {
	verbose bool
}

// NewStderrSink creates a sink that writes to stderr.
func NewStderrSink(opts ...StderrSinkOption) loopwatch.Sink {
	cfg := &stderrSinkConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrSink{
		verbose: cfg.verbose,
	}
}

// Write formats and outputs the record to stderr.
func (s *stderrSink) Write(ctx context.Context, rec loopwatch.Record) error {
	// Main line
	// Format: [LOOPWATCH] #<sequence> <type> at <file>:<line> (action: <action>)
	var parts []string
	parts = append(parts, fmt.Sprintf("[LOOPWATCH] #%d %s", rec.Sequence, rec.Type))

	if rec.File != "" {
		location := rec.File
		if rec.Line > 0 {
			location = fmt.Sprintf("%s:%d", rec.File, rec.Line)
		}
		parts = append(parts, fmt.Sprintf("at %s", location))
	}
	if rec.Action != "" {
		parts = append(parts, fmt.Sprintf("(action: %s)", rec.Action))
	}
	if id, ok := loopwatch.EpisodeIDFromContext(ctx); ok {
		parts = append(parts, fmt.Sprintf("[episode %s]", id))
	}

	fmt.Fprintln(os.Stderr, strings.Join(parts, " "))

	// Message line
	if rec.Message != "" {
		fmt.Fprintf(os.Stderr, "        Message: %s\n", truncate(rec.Message, maxMessageLen))
	}

	// Full details (only in verbose mode)
	if s.verbose {
		if rec.CodeSnippet != "" {
			fmt.Fprintf(os.Stderr, "        Snippet:\n")
			for _, line := range strings.Split(rec.CodeSnippet, "\n") {
				fmt.Fprintf(os.Stderr, "          %s\n", line)
			}
		}
		if rec.Traceback != "" {
			fmt.Fprintf(os.Stderr, "        Traceback:\n")
			for _, line := range strings.Split(rec.Traceback, "\n") {
				fmt.Fprintf(os.Stderr, "          %s\n", line)
			}
		}
	}

	return nil
}

// Flush is a no-op for stderr sink.
func (s *stderrSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for stderr sink.
func (s *stderrSink) Close() error {
	return nil
}

// truncate shortens a string and adds a truncation marker.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	marker := "...[TRUNCATED]"
	if maxLen <= len(marker) {
		return marker[:maxLen]
	}
	return s[:maxLen-len(marker)] + marker
}
