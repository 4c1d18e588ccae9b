// detector.go provides the Detector, the stateful error-pattern tracker
// consumed by the agent's step executor.

package loopwatch

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
)

// ErrInvalidReport is returned by AddError when a report omits the
// mandatory message field. The detector state is left unchanged.
var ErrInvalidReport = errors.New("loopwatch: report is missing the message field")

// Tuning controls the detection and escalation thresholds.
// Zero fields fall back to the DefaultTuning values.
type Tuning struct {
	// WindowSize is the trailing record count inspected by DetectLoop.
	WindowSize int

	// SameTypeWarnThreshold is the cumulative same-type count at which
	// SuggestRecovery appends the repeated-failure warning.
	SameTypeWarnThreshold int

	// TotalWarnThreshold is the history length at which SuggestRecovery
	// appends the total-volume warning.
	TotalWarnThreshold int

	// RecoveryLineDelta is the maximum line distance for two consecutive
	// same-file errors to count as a recovery attempt.
	RecoveryLineDelta int

	// ExtraPatterns appends classifier pattern sources per category,
	// tried after the built-ins of the same category. Only the six
	// classifiable categories are meaningful here; the unknown category
	// is a fallback and cannot be matched directly.
	ExtraPatterns map[ErrorType][]string
}

// DefaultTuning returns the thresholds the heuristics were designed around.
func DefaultTuning() Tuning {
	return Tuning{
		WindowSize:            5,
		SameTypeWarnThreshold: 3,
		TotalWarnThreshold:    7,
		RecoveryLineDelta:     10,
	}
}

// withDefaults fills unset numeric fields from DefaultTuning.
func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if t.WindowSize <= 0 {
		t.WindowSize = def.WindowSize
	}
	if t.SameTypeWarnThreshold <= 0 {
		t.SameTypeWarnThreshold = def.SameTypeWarnThreshold
	}
	if t.TotalWarnThreshold <= 0 {
		t.TotalWarnThreshold = def.TotalWarnThreshold
	}
	if t.RecoveryLineDelta <= 0 {
		t.RecoveryLineDelta = def.RecoveryLineDelta
	}
	return t
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithSink forwards every classified record to the given sink.
// Sink failures never abort ingestion; they are logged and swallowed.
func WithSink(sink Sink) DetectorOption {
	return func(d *Detector) {
		d.sink = sink
	}
}

// WithLogger sets the diagnostic logger, used for skipped malformed
// classifier patterns and swallowed sink errors. Nil disables diagnostics.
func WithLogger(logger *log.Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithTuning overrides the default thresholds. Zero fields keep their
// defaults.
func WithTuning(t Tuning) DetectorOption {
	return func(d *Detector) {
		d.tuning = t.withDefaults()
		d.tuning.ExtraPatterns = t.ExtraPatterns
	}
}

// Detector tracks the error history of one agent episode. It classifies
// each ingested failure, detects repetitive failure loops over a trailing
// window, synthesizes recovery suggestions, and aggregates statistics.
//
// Construct one detector per episode and Reset it between episodes; the
// design assumes a single writer and no concurrent readers during a write.
// The internal mutex exists so Reset is atomic with respect to readers.
// Retry and backoff policy belongs to the outer agent loop, not here.
type Detector struct {
	mu         sync.Mutex
	history    []Record
	typeCounts map[ErrorType]int
	typeOrder  []ErrorType // first-seen order, for deterministic tie-breaks

	tuning     Tuning
	classifier *classifier
	sink       Sink
	logger     *log.Logger
}

// NewDetector creates a detector with the given options.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		typeCounts: make(map[ErrorType]int),
		tuning:     DefaultTuning(),
	}
	for _, opt := range opts {
		opt(d)
	}

	// Default to a noop sink if none provided
	if d.sink == nil {
		d.sink = noopSinkInternal{}
	}

	d.classifier = newClassifier(d.tuning.ExtraPatterns, d.logger)
	return d
}

// AddError validates, classifies, and appends an error report, then
// forwards the resulting record to the sink. Returns ErrInvalidReport when
// the message field is absent; every other input is normalized rather than
// rejected. The caller observes effects only through subsequent queries.
func (d *Detector) AddError(ctx context.Context, report Report) error {
	if report.Message == nil {
		if d.logger != nil {
			d.logger.Printf("loopwatch: rejected report without message field")
		}
		return ErrInvalidReport
	}

	line := report.Line
	if line < 0 {
		line = 0
	}

	d.mu.Lock()
	rec := Record{
		RecordID:    uuid.NewString(),
		Sequence:    len(d.history),
		Type:        d.classifier.classify(*report.Message),
		Message:     *report.Message,
		File:        report.File,
		Line:        line,
		Action:      report.Action,
		CodeSnippet: report.CodeSnippet,
		Traceback:   report.Traceback,
	}
	d.history = append(d.history, rec)
	if d.typeCounts[rec.Type] == 0 {
		d.typeOrder = append(d.typeOrder, rec.Type)
	}
	d.typeCounts[rec.Type]++
	d.mu.Unlock()

	if err := d.sink.Write(ctx, rec); err != nil && d.logger != nil {
		d.logger.Printf("loopwatch: sink write failed for record %s: %v", rec.RecordID, err)
	}
	return nil
}

// Classify maps a message to its error category without recording it.
// Identical message text always yields the same category.
func (d *Detector) Classify(message string) ErrorType {
	return d.classifier.classify(message)
}

// Reset clears the history and the per-type counters in one critical
// section, so no reader observes one cleared without the other.
// Call it at episode boundaries to avoid contamination between tasks.
func (d *Detector) Reset() {
	d.mu.Lock()
	dropped := len(d.history)
	d.history = nil
	d.typeCounts = make(map[ErrorType]int)
	d.typeOrder = nil
	d.mu.Unlock()

	if d.logger != nil && dropped > 0 {
		d.logger.Printf("loopwatch: detector reset, dropped %d records", dropped)
	}
}

// Flush delegates to the sink.
func (d *Detector) Flush(ctx context.Context) error {
	return d.sink.Flush(ctx)
}

// Close delegates to the sink.
func (d *Detector) Close() error {
	return d.sink.Close()
}

// window returns a copy of the trailing size records, or nil when the
// history is shorter than size.
func (d *Detector) window(size int) []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.history) < size {
		return nil
	}
	return append([]Record(nil), d.history[len(d.history)-size:]...)
}

// noopSinkInternal is an internal noop sink to avoid import cycles.
type noopSinkInternal struct{}

func (noopSinkInternal) Write(ctx context.Context, rec Record) error { return nil }

func (noopSinkInternal) Flush(ctx context.Context) error { return nil }

func (noopSinkInternal) Close() error { return nil }
