// suggest.go synthesizes contextual recovery guidance from the history.

package loopwatch

import "fmt"

// recoveryTemplates holds the category-specific multi-step remediation
// text, keyed by the most recent record's type.
var recoveryTemplates = map[ErrorType]string{
	ErrorTypeIndentation: "INDENTATION ERROR - Common fixes:\n" +
		"1. Check that all lines use consistent spacing (4 spaces or 1 tab)\n" +
		"2. Verify the indentation matches the surrounding code\n" +
		"3. Use the 'goto' command to see context around your edit\n" +
		"4. Compare with neighboring functions for proper indentation level",
	ErrorTypeSyntax: "SYNTAX ERROR - Try these steps:\n" +
		"1. Check for missing/extra parentheses, brackets, or quotes\n" +
		"2. Verify the line before/after your edit for completion\n" +
		"3. Review the original code structure before editing\n" +
		"4. Look for unclosed strings, lists, or function calls",
	ErrorTypeUndefined: "UNDEFINED NAME - Likely causes:\n" +
		"1. Missing import statement at the top of the file\n" +
		"2. Variable defined in a different scope\n" +
		"3. Typo in variable/function name\n" +
		"4. Variable defined after it's used\n" +
		"-> Use 'search_file' to find where this name is defined\n" +
		"-> Use 'search_dir' to search across the entire codebase",
	ErrorTypeImport: "IMPORT ERROR - Solutions:\n" +
		"1. Check if the module is available in this environment\n" +
		"2. Verify the import path is correct (relative vs absolute)\n" +
		"3. Look for similar imports elsewhere in the codebase\n" +
		"4. Check if the module needs to be installed\n" +
		"-> Use 'search_dir' to find existing import patterns",
	ErrorTypeType: "TYPE/ATTRIBUTE ERROR - Check:\n" +
		"1. Variable types match expected operations\n" +
		"2. Object has the attribute/method you're calling\n" +
		"3. Review the object's class definition\n" +
		"4. Check function signatures and argument types\n" +
		"-> Use 'search_file' to find the class/function definition",
	ErrorTypeLogic: "LOGIC ERROR (Index/Key/Value) - Verify:\n" +
		"1. List/dict indices are within bounds\n" +
		"2. Keys exist before accessing them\n" +
		"3. Check for empty collections before accessing\n" +
		"4. Verify loop ranges and conditions",
}

// genericRecoveryTemplate is the fallback for unknown/uncategorized types.
const genericRecoveryTemplate = "ERROR DETECTED - Consider a different approach:\n" +
	"1. Re-read the error message carefully\n" +
	"2. Review the surrounding code for context\n" +
	"3. Try a simpler, incremental change"

// SuggestRecovery builds a recovery message for the most recent error.
// Returns ("", false) when the history is empty.
//
// The base template is selected by the most recent record's type. Two
// independent warnings may be appended, in this order: a repeated-failure
// warning once the same category has been seen SameTypeWarnThreshold
// times, and a total-volume warning once the history reaches
// TotalWarnThreshold records.
func (d *Detector) SuggestRecovery() (string, bool) {
	d.mu.Lock()
	if len(d.history) == 0 {
		d.mu.Unlock()
		return "", false
	}
	last := d.history[len(d.history)-1]
	frequency := d.typeCounts[last.Type]
	total := len(d.history)
	d.mu.Unlock()

	msg, ok := recoveryTemplates[last.Type]
	if !ok {
		msg = genericRecoveryTemplate
	}

	if frequency >= d.tuning.SameTypeWarnThreshold {
		msg += fmt.Sprintf("\n\nWARNING: this is your %s %s error.\n"+
			"Consider:\n"+
			"- Taking a completely different approach to solve this issue\n"+
			"- Re-reading the file to understand the context better\n"+
			"- Starting with a simpler change first\n"+
			"- Searching for similar code patterns in the repository",
			ordinal(frequency), last.Type)
	}

	if total >= d.tuning.TotalWarnThreshold {
		msg += fmt.Sprintf("\n\nTOTAL ERRORS: %d\n"+
			"You may be approaching this problem incorrectly.\n"+
			"Consider requesting human assistance or trying a different strategy.",
			total)
	}

	return msg, true
}

// ShouldSuggestAlternativeApproach reports whether the agent should change
// strategy entirely rather than keep patching. Any satisfied condition
// yields true:
//
//   - at least 4 of the last 5 records are errors (trivially satisfied
//     once five records exist, since every stored record is an error)
//   - the last 3 records share one type other than unknown
//   - the history holds at least 8 records
//
// Always false while the history holds fewer than 3 records.
func (d *Detector) ShouldSuggestAlternativeApproach() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.history) < 3 {
		return false
	}

	if len(d.history) >= 5 {
		recent := d.history[len(d.history)-5:]
		if len(recent) >= 4 {
			return true
		}
	}

	last3 := d.history[len(d.history)-3:]
	if last3[0].Type != ErrorTypeUnknown &&
		last3[0].Type == last3[1].Type && last3[1].Type == last3[2].Type {
		return true
	}

	return len(d.history) >= 8
}

// ordinal renders 1 as "1st", 2 as "2nd", 3 as "3rd", 11 as "11th".
func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		// 11th, 12th, 13th
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
