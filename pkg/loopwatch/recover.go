// recover.go provides the Recover helper so panics inside agent actions
// land in the error history like any other failure.

package loopwatch

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Recover captures a panic, records it to the detector with the stack
// trace in the Traceback field, and returns the recovered value. It does
// NOT re-panic after recording.
//
// Use in defer:
//
//	func step(ctx context.Context) {
//	    defer loopwatch.Recover(ctx, detector, "edit")
//	    // action that might panic
//	}
//
// Or to capture the recovered value:
//
//	func step(ctx context.Context) (err error) {
//	    defer func() {
//	        if r := loopwatch.Recover(ctx, detector, "edit"); r != nil {
//	            err = fmt.Errorf("panic: %v", r)
//	        }
//	    }()
//	    // action that might panic
//	}
func Recover(ctx context.Context, d *Detector, action string) any {
	r := recover()
	if r == nil {
		return nil
	}

	report := NewReport(formatRecovered(r))
	report.Action = action
	report.Traceback = string(debug.Stack())

	// AddError only fails on a missing message, which NewReport rules out.
	_ = d.AddError(ctx, report)

	return r
}

// formatRecovered formats a recovered panic value as a string.
func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
