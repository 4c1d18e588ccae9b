package loopwatch

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
)

// testSink captures records for verification in tests.
type testSink struct {
	mu       sync.Mutex
	records  []Record
	writeErr error
}

func (s *testSink) Write(ctx context.Context, rec Record) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *testSink) Flush(ctx context.Context) error {
	return nil
}

func (s *testSink) Close() error {
	return nil
}

func (s *testSink) getRecords() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Record, len(s.records))
	copy(result, s.records)
	return result
}

func TestDetector_AddError_AppendsAndCounts(t *testing.T) {
	detector := NewDetector()

	err := detector.AddError(context.Background(), NewReport("SyntaxError: invalid syntax"))
	if err != nil {
		t.Fatalf("AddError returned error: %v", err)
	}

	stats := detector.Statistics()
	if stats.TotalErrors != 1 {
		t.Fatalf("TotalErrors = %d, want 1", stats.TotalErrors)
	}
	if stats.ByType[ErrorTypeSyntax] != 1 {
		t.Errorf("ByType[syntax] = %d, want 1", stats.ByType[ErrorTypeSyntax])
	}
}

func TestDetector_AddError_AssignsSequenceAndRecordID(t *testing.T) {
	sink := &testSink{}
	detector := NewDetector(WithSink(sink))

	for i := 0; i < 3; i++ {
		if err := detector.AddError(context.Background(), NewReport("Error")); err != nil {
			t.Fatalf("AddError returned error: %v", err)
		}
	}

	records := sink.getRecords()
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for i, rec := range records {
		if rec.Sequence != i {
			t.Errorf("records[%d].Sequence = %d, want %d", i, rec.Sequence, i)
		}
		// Should be a UUID format (36 chars with hyphens)
		if len(rec.RecordID) != 36 {
			t.Errorf("RecordID length = %d, want 36 (UUID format)", len(rec.RecordID))
		}
	}
}

func TestDetector_AddError_MissingMessage(t *testing.T) {
	detector := NewDetector()

	err := detector.AddError(context.Background(), Report{File: "a.py", Line: 3})
	if !errors.Is(err, ErrInvalidReport) {
		t.Fatalf("AddError error = %v, want ErrInvalidReport", err)
	}

	// State must be unchanged.
	if stats := detector.Statistics(); stats.TotalErrors != 0 {
		t.Errorf("TotalErrors = %d, want 0 after rejected report", stats.TotalErrors)
	}
}

func TestDetector_AddError_EmptyMessageClassifiedUnknown(t *testing.T) {
	detector := NewDetector()

	if err := detector.AddError(context.Background(), NewReport("")); err != nil {
		t.Fatalf("AddError returned error: %v", err)
	}

	stats := detector.Statistics()
	if stats.ByType[ErrorTypeUnknown] != 1 {
		t.Errorf("ByType[unknown] = %d, want 1", stats.ByType[ErrorTypeUnknown])
	}
}

func TestDetector_AddError_ForwardsToSink(t *testing.T) {
	sink := &testSink{}
	detector := NewDetector(WithSink(sink))

	report := NewReport("IndentationError: unexpected indent")
	report.File = "solver.py"
	report.Line = 42
	report.Action = "edit"

	if err := detector.AddError(context.Background(), report); err != nil {
		t.Fatalf("AddError returned error: %v", err)
	}

	records := sink.getRecords()
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Type != ErrorTypeIndentation {
		t.Errorf("Type = %q, want %q", records[0].Type, ErrorTypeIndentation)
	}
	if records[0].File != "solver.py" || records[0].Line != 42 || records[0].Action != "edit" {
		t.Errorf("Record fields not forwarded: %+v", records[0])
	}
}

func TestDetector_AddError_SinkErrorSwallowed(t *testing.T) {
	var buf bytes.Buffer
	sink := &testSink{writeErr: errors.New("sink down")}
	detector := NewDetector(
		WithSink(sink),
		WithLogger(log.New(&buf, "", 0)),
	)

	if err := detector.AddError(context.Background(), NewReport("Error")); err != nil {
		t.Fatalf("AddError should swallow sink errors, got: %v", err)
	}

	// The record was still appended.
	if stats := detector.Statistics(); stats.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", stats.TotalErrors)
	}
	// And the failure was logged.
	if !bytes.Contains(buf.Bytes(), []byte("sink write failed")) {
		t.Errorf("Expected sink failure diagnostic, got %q", buf.String())
	}
}

func TestDetector_AddError_NegativeLineNormalized(t *testing.T) {
	sink := &testSink{}
	detector := NewDetector(WithSink(sink))

	report := NewReport("Error")
	report.Line = -7
	if err := detector.AddError(context.Background(), report); err != nil {
		t.Fatalf("AddError returned error: %v", err)
	}

	if records := sink.getRecords(); records[0].Line != 0 {
		t.Errorf("Line = %d, want 0", records[0].Line)
	}
}

func TestDetector_Reset_ClearsHistoryAndCounts(t *testing.T) {
	detector := NewDetector()

	for i := 0; i < 4; i++ {
		_ = detector.AddError(context.Background(), NewReport("SyntaxError: invalid syntax"))
	}
	detector.Reset()

	stats := detector.Statistics()
	if stats.TotalErrors != 0 {
		t.Errorf("TotalErrors = %d, want 0 after reset", stats.TotalErrors)
	}
	total := 0
	for _, count := range stats.ByType {
		total += count
	}
	if total != 0 {
		t.Errorf("sum of ByType = %d, want 0 after reset", total)
	}
	if stats.MostCommonError != "" {
		t.Errorf("MostCommonError = %q, want empty after reset", stats.MostCommonError)
	}
}

func TestDetector_QueriesAreIdempotent(t *testing.T) {
	detector := NewDetector()
	for i := 0; i < 5; i++ {
		report := NewReport("SyntaxError: invalid syntax")
		report.File = "a.py"
		report.Line = 10
		_ = detector.AddError(context.Background(), report)
	}

	loop1, reason1 := detector.DetectLoop()
	loop2, reason2 := detector.DetectLoop()
	if loop1 != loop2 || reason1 != reason2 {
		t.Errorf("DetectLoop not idempotent: (%v,%q) vs (%v,%q)", loop1, reason1, loop2, reason2)
	}

	stats1 := detector.Statistics()
	stats2 := detector.Statistics()
	if stats1.TotalErrors != stats2.TotalErrors ||
		stats1.RecoveryAttempts != stats2.RecoveryAttempts ||
		stats1.MostCommonError != stats2.MostCommonError ||
		stats1.ConsecutiveSameType != stats2.ConsecutiveSameType {
		t.Errorf("Statistics not idempotent: %+v vs %+v", stats1, stats2)
	}
}

func TestDetector_Classify_Deterministic(t *testing.T) {
	detector := NewDetector()

	const msg = "TypeError: object has no attribute 'frob'"
	first := detector.Classify(msg)
	for i := 0; i < 10; i++ {
		if got := detector.Classify(msg); got != first {
			t.Fatalf("Classify(%q) = %q on attempt %d, want %q", msg, got, i, first)
		}
	}
}

func TestNewDetector_NilSink(t *testing.T) {
	// Should not panic with no sink configured, should use a default
	detector := NewDetector()

	_ = detector.AddError(context.Background(), NewReport("Error"))
	if err := detector.Flush(context.Background()); err != nil {
		t.Errorf("Flush returned error: %v", err)
	}
	if err := detector.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}
