// summary.go renders a human-readable snapshot of the detector state.

package loopwatch

import (
	"fmt"
	"sort"
	"strings"
)

// Summary renders the current statistics, the loop verdict, and the
// alternative-approach recommendation as plain text. Intended for episode
// logs and post-mortem review, not for machine parsing.
func (d *Detector) Summary() string {
	stats := d.Statistics()

	var b strings.Builder
	b.WriteString("=== error pattern summary ===\n")
	fmt.Fprintf(&b, "total errors:        %d\n", stats.TotalErrors)
	fmt.Fprintf(&b, "recent errors:       %d\n", stats.RecentErrors)
	fmt.Fprintf(&b, "recovery attempts:   %d\n", stats.RecoveryAttempts)
	fmt.Fprintf(&b, "files affected:      %d\n", stats.UniqueFilesAffected)
	fmt.Fprintf(&b, "avg errors per file: %.2f\n", stats.AvgErrorsPerFile)

	if len(stats.ByType) > 0 {
		b.WriteString("errors by type:\n")
		type typeCount struct {
			errType ErrorType
			count   int
		}
		sorted := make([]typeCount, 0, len(stats.ByType))
		for errType, count := range stats.ByType {
			sorted = append(sorted, typeCount{errType, count})
		}
		// Highest count first; ties by name for stable output.
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].count != sorted[j].count {
				return sorted[i].count > sorted[j].count
			}
			return sorted[i].errType < sorted[j].errType
		})
		for _, tc := range sorted {
			pct := float64(tc.count) / float64(stats.TotalErrors) * 100
			fmt.Fprintf(&b, "  - %s: %d (%.1f%%)\n", tc.errType, tc.count, pct)
		}
	}

	if stats.MostCommonError != "" {
		fmt.Fprintf(&b, "most common: %s\n", stats.MostCommonError)
	}
	if file, ok := d.MostProblematicFile(); ok {
		fmt.Fprintf(&b, "most problematic file: %s\n", file)
	}

	if isLoop, reason := d.DetectLoop(); isLoop {
		fmt.Fprintf(&b, "LOOP DETECTED: %s\n", reason)
	}
	if d.ShouldSuggestAlternativeApproach() {
		b.WriteString("RECOMMENDATION: try a different approach\n")
	}

	return b.String()
}
