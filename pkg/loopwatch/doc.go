// Package loopwatch tracks the error history of an autonomous coding agent,
// classifies each failure into a small taxonomy, detects when the agent is
// stuck in a repetitive failure loop, and synthesizes contextual recovery
// suggestions.
//
// loopwatch is a decision-support component consumed by the agent's step
// executor. It never edits code or retries actions itself, and its loop
// verdicts are heuristic warnings, not proofs of an infinite cycle.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - Report/Record: the error report boundary and the classified, immutable history entry
//   - Detector: in-memory per-episode state covering ingestion, classification, loop detection, suggestions, and statistics
//   - Sink: destination for classified records (stderr, sqlite, multi, async, noop)
//   - EpisodeController: owns the detector across episodes and resets it at boundaries
//
// # Quick Start
//
//	detector := loopwatch.NewDetector(
//	    loopwatch.WithSink(stderr.NewStderrSink()),
//	)
//	_ = detector.AddError(ctx, loopwatch.NewReport("SyntaxError: invalid syntax"))
//	if stuck, reason := detector.DetectLoop(); stuck {
//	    fmt.Println("loop:", reason)
//	}
//	if msg, ok := detector.SuggestRecovery(); ok {
//	    fmt.Println(msg)
//	}
//
// # Design Principles
//
//   - Sinks never abort ingestion: all sink errors are swallowed and logged
//   - Only a report without a message is an error; everything else degrades to "no signal"
//   - One detector per episode, one writer at a time; Reset is atomic for readers
package loopwatch
