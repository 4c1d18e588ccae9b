package loopwatch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addTestError records one report, failing the test on a rejected report.
func addTestError(t *testing.T, d *Detector, message, file string, line int) {
	t.Helper()
	report := NewReport(message)
	report.File = file
	report.Line = line
	require.NoError(t, d.AddError(context.Background(), report))
}

func TestDetectLoop_ShortHistory(t *testing.T) {
	d := NewDetector()
	for i := 0; i < 4; i++ {
		addTestError(t, d, "SyntaxError: invalid syntax", "a.py", 10)
	}

	stuck, reason := d.DetectLoop()
	assert.False(t, stuck)
	assert.Empty(t, reason)
}

func TestDetectLoop_UniformType(t *testing.T) {
	d := NewDetector()
	// Distinct lines and files so only the uniform-type rule can fire.
	for i := 0; i < 5; i++ {
		addTestError(t, d, "IndentationError: unexpected indent", fmt.Sprintf("f%d.py", i), 10+i)
	}

	stuck, reason := d.DetectLoop()
	require.True(t, stuck)
	assert.Equal(t, "repetitive indentation errors detected", reason)
}

func TestDetectLoop_UniformUnknownNotALoop(t *testing.T) {
	d := NewDetector()
	for i := 0; i < 5; i++ {
		addTestError(t, d, fmt.Sprintf("weird failure %d", i), fmt.Sprintf("f%d.py", i), 0)
	}

	stuck, _ := d.DetectLoop()
	assert.False(t, stuck)
}

func TestDetectLoop_SameLine(t *testing.T) {
	d := NewDetector()
	// Mixed types so the uniform-type rule cannot fire; three records carry
	// the same line and two carry none.
	addTestError(t, d, "SyntaxError: invalid syntax", "a.py", 42)
	addTestError(t, d, "TypeError: bad operand", "b.py", 42)
	addTestError(t, d, "mystery failure", "", 0)
	addTestError(t, d, "KeyError: 'x'", "c.py", 42)
	addTestError(t, d, "another mystery", "", 0)

	stuck, reason := d.DetectLoop()
	require.True(t, stuck)
	assert.Equal(t, "repeatedly failing at line 42", reason)
}

func TestDetectLoop_SameLine_TooFewLineBearing(t *testing.T) {
	d := NewDetector()
	addTestError(t, d, "SyntaxError: invalid syntax", "a.py", 42)
	addTestError(t, d, "TypeError: bad operand", "b.py", 42)
	addTestError(t, d, "mystery one", "", 0)
	addTestError(t, d, "mystery two", "", 0)
	addTestError(t, d, "mystery three", "", 0)

	stuck, _ := d.DetectLoop()
	assert.False(t, stuck)
}

func TestDetectLoop_AlternatingTypes(t *testing.T) {
	d := NewDetector()
	// Distinct lines and files, strict A-B-A-B-A over the whole window.
	addTestError(t, d, "SyntaxError: invalid syntax", "a.py", 1)
	addTestError(t, d, "TypeError: bad operand", "b.py", 2)
	addTestError(t, d, "SyntaxError: invalid syntax", "c.py", 3)
	addTestError(t, d, "TypeError: bad operand", "d.py", 4)
	addTestError(t, d, "SyntaxError: invalid syntax", "e.py", 5)

	stuck, reason := d.DetectLoop()
	require.True(t, stuck)
	// First-seen order of the two types is the reported order.
	assert.Equal(t, "alternating between syntax and type errors", reason)
}

func TestDetectLoop_AlternatingBrokenByAdjacentRepeat(t *testing.T) {
	d := NewDetector()
	// Two distinct types but an adjacent repeat breaks strict alternation.
	addTestError(t, d, "SyntaxError: invalid syntax", "a.py", 1)
	addTestError(t, d, "SyntaxError: invalid syntax", "b.py", 2)
	addTestError(t, d, "TypeError: bad operand", "c.py", 3)
	addTestError(t, d, "SyntaxError: invalid syntax", "d.py", 4)
	addTestError(t, d, "TypeError: bad operand", "e.py", 5)

	stuck, _ := d.DetectLoop()
	assert.False(t, stuck)
}

func TestDetectLoop_ThreeTypesNotAlternating(t *testing.T) {
	d := NewDetector()
	addTestError(t, d, "SyntaxError: invalid syntax", "a.py", 1)
	addTestError(t, d, "TypeError: bad operand", "b.py", 2)
	addTestError(t, d, "KeyError: 'x'", "c.py", 3)
	addTestError(t, d, "SyntaxError: invalid syntax", "d.py", 4)
	addTestError(t, d, "TypeError: bad operand", "e.py", 5)

	stuck, _ := d.DetectLoop()
	assert.False(t, stuck)
}

func TestDetectLoop_SameFile(t *testing.T) {
	d := NewDetector()
	// Three distinct types, distinct lines, but four records in one file.
	addTestError(t, d, "SyntaxError: invalid syntax", "solver.py", 1)
	addTestError(t, d, "TypeError: bad operand", "solver.py", 2)
	addTestError(t, d, "KeyError: 'x'", "solver.py", 3)
	addTestError(t, d, "mystery failure", "", 0)
	addTestError(t, d, "NameError: name 'x' is not defined", "solver.py", 4)

	stuck, reason := d.DetectLoop()
	require.True(t, stuck)
	assert.Equal(t, "multiple errors in same file: solver.py", reason)
}

func TestDetectLoop_SameFile_TooFewFileBearing(t *testing.T) {
	d := NewDetector()
	addTestError(t, d, "SyntaxError: invalid syntax", "solver.py", 1)
	addTestError(t, d, "TypeError: bad operand", "solver.py", 2)
	addTestError(t, d, "KeyError: 'x'", "solver.py", 3)
	addTestError(t, d, "mystery one", "", 0)
	addTestError(t, d, "mystery two", "", 0)

	stuck, _ := d.DetectLoop()
	assert.False(t, stuck)
}

func TestDetectLoop_RulePriority_UniformBeatsSameLine(t *testing.T) {
	d := NewDetector()
	// Both rules would fire; the uniform-type reason wins.
	for i := 0; i < 5; i++ {
		addTestError(t, d, "SyntaxError: invalid syntax", "a.py", 42)
	}

	stuck, reason := d.DetectLoop()
	require.True(t, stuck)
	assert.Equal(t, "repetitive syntax errors detected", reason)
}

func TestDetectLoop_RulePriority_SameLineBeatsAlternating(t *testing.T) {
	d := NewDetector()
	// Strict alternation and a shared line; the same-line reason wins.
	addTestError(t, d, "SyntaxError: invalid syntax", "a.py", 42)
	addTestError(t, d, "TypeError: bad operand", "b.py", 42)
	addTestError(t, d, "SyntaxError: invalid syntax", "c.py", 42)
	addTestError(t, d, "TypeError: bad operand", "d.py", 42)
	addTestError(t, d, "SyntaxError: invalid syntax", "e.py", 42)

	stuck, reason := d.DetectLoop()
	require.True(t, stuck)
	assert.Equal(t, "repeatedly failing at line 42", reason)
}

func TestDetectLoop_SlidingWindow(t *testing.T) {
	d := NewDetector()
	// Five uniform records, then two of a different type. The window slides,
	// so the old run alone no longer fires the uniform rule.
	for i := 0; i < 5; i++ {
		addTestError(t, d, "IndentationError: unexpected indent", fmt.Sprintf("f%d.py", i), 10+i)
	}
	stuck, _ := d.DetectLoop()
	require.True(t, stuck)

	addTestError(t, d, "KeyError: 'x'", "g.py", 99)
	addTestError(t, d, "mystery failure", "", 0)

	stuck, _ = d.DetectLoop()
	assert.False(t, stuck)
}

func TestDetectLoop_CustomWindowSize(t *testing.T) {
	d := NewDetector(WithTuning(Tuning{WindowSize: 3}))
	for i := 0; i < 3; i++ {
		addTestError(t, d, "SyntaxError: invalid syntax", fmt.Sprintf("f%d.py", i), 10+i)
	}

	stuck, reason := d.DetectLoop()
	require.True(t, stuck)
	assert.Equal(t, "repetitive syntax errors detected", reason)
}
