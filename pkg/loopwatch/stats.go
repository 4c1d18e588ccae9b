// stats.go aggregates the error history into summary metrics and
// read-only queries.

package loopwatch

import "sort"

// statsWindow is the fixed trailing window used by the recent-errors count
// and the error rate. Independent of the loop-detection window.
const statsWindow = 5

// Statistics summarizes the detector's history. Useful for debugging the
// recovery system, post-mortem trajectory analysis, and deciding when to
// abort a task.
type Statistics struct {
	// TotalErrors is the full history length.
	TotalErrors int

	// ByType maps each category to its cumulative occurrence count.
	ByType map[ErrorType]int

	// RecentErrors is min(5, TotalErrors).
	RecentErrors int

	// RecoveryAttempts counts adjacent record pairs that retried the same
	// spot: same nonzero line, or same non-empty file with both lines
	// nonzero and within RecoveryLineDelta of each other. Computed over
	// the entire history.
	RecoveryAttempts int

	// MostCommonError is the category with the highest cumulative count,
	// first-seen wins ties. Empty when the history is empty.
	MostCommonError ErrorType

	// UniqueFilesAffected counts distinct non-empty file values.
	UniqueFilesAffected int

	// AvgErrorsPerFile is TotalErrors / max(1, UniqueFilesAffected).
	AvgErrorsPerFile float64

	// ErrorRate is min(TotalErrors, 5) / 5.
	ErrorRate float64

	// ConsecutiveSameType is the length of the trailing run of records
	// sharing the most recent record's type.
	ConsecutiveSameType int
}

// Statistics returns aggregate metrics over the entire history. An empty
// history yields the zero-valued structure.
func (d *Detector) Statistics() Statistics {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.history) == 0 {
		return Statistics{ByType: map[ErrorType]int{}}
	}

	byType := make(map[ErrorType]int, len(d.typeCounts))
	for errType, count := range d.typeCounts {
		byType[errType] = count
	}

	uniqueFiles := make(map[string]struct{})
	for _, rec := range d.history {
		if rec.File != "" {
			uniqueFiles[rec.File] = struct{}{}
		}
	}

	total := len(d.history)
	recent := total
	if recent > statsWindow {
		recent = statsWindow
	}

	filesDivisor := len(uniqueFiles)
	if filesDivisor < 1 {
		filesDivisor = 1
	}

	return Statistics{
		TotalErrors:         total,
		ByType:              byType,
		RecentErrors:        recent,
		RecoveryAttempts:    d.countRecoveryAttemptsLocked(),
		MostCommonError:     d.mostCommonLocked(),
		UniqueFilesAffected: len(uniqueFiles),
		AvgErrorsPerFile:    float64(total) / float64(filesDivisor),
		ErrorRate:           float64(recent) / float64(statsWindow),
		ConsecutiveSameType: d.consecutiveSameTypeLocked(),
	}
}

// countRecoveryAttemptsLocked counts adjacent pairs that look like a retry
// of the same spot. Caller holds d.mu.
func (d *Detector) countRecoveryAttemptsLocked() int {
	attempts := 0
	for i := 1; i < len(d.history); i++ {
		prev, curr := d.history[i-1], d.history[i]
		switch {
		case curr.Line > 0 && curr.Line == prev.Line:
			attempts++
		case curr.File != "" && curr.File == prev.File &&
			curr.Line > 0 && prev.Line > 0 &&
			absInt(curr.Line-prev.Line) <= d.tuning.RecoveryLineDelta:
			attempts++
		}
	}
	return attempts
}

// mostCommonLocked returns the category with the highest count; ties go to
// the category seen first. Caller holds d.mu.
func (d *Detector) mostCommonLocked() ErrorType {
	var best ErrorType
	bestCount := 0
	for _, errType := range d.typeOrder {
		if count := d.typeCounts[errType]; count > bestCount {
			best = errType
			bestCount = count
		}
	}
	return best
}

// consecutiveSameTypeLocked measures the trailing run of the most recent
// record's type. Caller holds d.mu.
func (d *Detector) consecutiveSameTypeLocked() int {
	if len(d.history) == 0 {
		return 0
	}
	lastType := d.history[len(d.history)-1].Type
	count := 0
	for i := len(d.history) - 1; i >= 0; i-- {
		if d.history[i].Type != lastType {
			break
		}
		count++
	}
	return count
}

// LastN returns the most recent n records in insertion order, or the whole
// history when it holds fewer than n records.
func (d *Detector) LastN(n int) []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n <= 0 {
		return nil
	}
	if n > len(d.history) {
		n = len(d.history)
	}
	return append([]Record(nil), d.history[len(d.history)-n:]...)
}

// ErrorsByType returns all records of the given category, in insertion order.
func (d *Detector) ErrorsByType(errType ErrorType) []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Record
	for _, rec := range d.history {
		if rec.Type == errType {
			out = append(out, rec)
		}
	}
	return out
}

// ErrorsByFile returns all records for the given file, in insertion order.
func (d *Detector) ErrorsByFile(file string) []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Record
	for _, rec := range d.history {
		if rec.File == file {
			out = append(out, rec)
		}
	}
	return out
}

// HasErrorInFile reports whether any record names the given file.
func (d *Detector) HasErrorInFile(file string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, rec := range d.history {
		if rec.File == file {
			return true
		}
	}
	return false
}

// MostProblematicFile returns the file with the most records. Ties go to
// the file seen first. Returns ("", false) when no record names a file.
func (d *Detector) MostProblematicFile() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	counts := make(map[string]int)
	var order []string
	for _, rec := range d.history {
		if rec.File == "" {
			continue
		}
		if counts[rec.File] == 0 {
			order = append(order, rec.File)
		}
		counts[rec.File]++
	}
	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, file := range order[1:] {
		if counts[file] > counts[best] {
			best = file
		}
	}
	return best, true
}

// ProblematicLines returns the lines in the given file whose error count
// meets the threshold, in ascending line order. Records with line 0 are
// excluded.
func (d *Detector) ProblematicLines(file string, threshold int) []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	counts := make(map[int]int)
	for _, rec := range d.history {
		if rec.File == file && rec.Line > 0 {
			counts[rec.Line]++
		}
	}

	var lines []int
	for line, count := range counts {
		if count >= threshold {
			lines = append(lines, line)
		}
	}
	sort.Ints(lines)
	return lines
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
