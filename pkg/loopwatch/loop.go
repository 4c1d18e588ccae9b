// loop.go implements the loop-detection heuristics over the trailing window.

package loopwatch

import "fmt"

// loopHeuristic is one loop-detection rule over the trailing window.
// Each rule is an independent predicate paired with its reason formatter.
type loopHeuristic func(window []Record) (bool, string)

// loopHeuristics is the ordered rule list, evaluated short-circuit: the
// first satisfied rule wins and its reason is returned. Reordering changes
// which reason is reported when several rules would fire.
var loopHeuristics = []loopHeuristic{
	uniformTypeLoop,
	sameLineLoop,
	alternatingTypesLoop,
	sameFileLoop,
}

// DetectLoop inspects the trailing window of history and reports whether
// recent failures show a repetitive, likely-unproductive pattern. Returns
// (false, "") while the history is shorter than the window.
//
// The verdict is a heuristic signal, not a proof of an infinite cycle;
// false positives and negatives are acceptable.
func (d *Detector) DetectLoop() (bool, string) {
	window := d.window(d.tuning.WindowSize)
	if window == nil {
		return false, ""
	}
	for _, rule := range loopHeuristics {
		if ok, reason := rule(window); ok {
			return true, reason
		}
	}
	return false, ""
}

// uniformTypeLoop fires when every record in the window shares one
// classified type other than unknown.
func uniformTypeLoop(window []Record) (bool, string) {
	first := window[0].Type
	if first == ErrorTypeUnknown {
		return false, ""
	}
	for _, rec := range window[1:] {
		if rec.Type != first {
			return false, ""
		}
	}
	return true, fmt.Sprintf("repetitive %s errors detected", first)
}

// sameLineLoop fires when at least 3 line-bearing records in the window
// all name the same line. Records with line 0 are excluded.
func sameLineLoop(window []Record) (bool, string) {
	var lines []int
	for _, rec := range window {
		if rec.Line > 0 {
			lines = append(lines, rec.Line)
		}
	}
	if len(lines) < 3 {
		return false, ""
	}
	for _, line := range lines[1:] {
		if line != lines[0] {
			return false, ""
		}
	}
	return true, fmt.Sprintf("repeatedly failing at line %d", lines[0])
}

// alternatingTypesLoop fires on a strict A-B-A-B pattern: exactly two
// distinct types in the window, no two adjacent records sharing a type
// across the entire window, and a window of at least 4 records. The strict
// full-window reading is deliberate; do not loosen it to "contains an
// alternating subsequence".
func alternatingTypesLoop(window []Record) (bool, string) {
	if len(window) < 4 {
		return false, ""
	}
	seen := make(map[ErrorType]struct{}, 2)
	var order []ErrorType
	for _, rec := range window {
		if _, ok := seen[rec.Type]; !ok {
			seen[rec.Type] = struct{}{}
			order = append(order, rec.Type)
		}
	}
	if len(order) != 2 {
		return false, ""
	}
	for i := 0; i+1 < len(window); i++ {
		if window[i].Type == window[i+1].Type {
			return false, ""
		}
	}
	return true, fmt.Sprintf("alternating between %s and %s errors", order[0], order[1])
}

// sameFileLoop fires when the window's file-bearing records all name a
// single file and at least 4 of them do. Records with an empty file are
// excluded.
func sameFileLoop(window []Record) (bool, string) {
	var files []string
	for _, rec := range window {
		if rec.File != "" {
			files = append(files, rec.File)
		}
	}
	if len(files) < 4 {
		return false, ""
	}
	for _, f := range files[1:] {
		if f != files[0] {
			return false, ""
		}
	}
	return true, fmt.Sprintf("multiple errors in same file: %s", files[0])
}
