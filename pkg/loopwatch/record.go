// record.go defines the error report boundary and the classified record.

package loopwatch

// ErrorType is the category assigned to a classified error.
type ErrorType string

const (
	// ErrorTypeIndentation covers indentation and indented-block failures.
	ErrorTypeIndentation ErrorType = "indentation"

	// ErrorTypeSyntax covers invalid syntax, unterminated strings, and
	// unexpected end-of-input.
	ErrorTypeSyntax ErrorType = "syntax"

	// ErrorTypeUndefined covers undefined identifiers.
	ErrorTypeUndefined ErrorType = "undefined"

	// ErrorTypeImport covers module and import resolution failures.
	ErrorTypeImport ErrorType = "import"

	// ErrorTypeType covers type mismatches, missing attributes, and wrong
	// argument arity.
	ErrorTypeType ErrorType = "type"

	// ErrorTypeLogic covers out-of-range indices, missing keys, and
	// invalid values.
	ErrorTypeLogic ErrorType = "logic"

	// ErrorTypeUnknown is the fallback when no category matches or the
	// message is empty.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Report is the error report submitted by the agent loop.
// All fields except Message are optional and default to their zero value.
type Report struct {
	// Message is the raw error text. Required: a nil Message is rejected
	// with ErrInvalidReport, while an empty string is accepted and
	// classified as unknown. Uses a pointer to distinguish "not set"
	// from "zero value".
	Message *string

	// File is the originating file path. Empty means unknown/unspecified.
	File string

	// Line is the 1-based line number. 0 means not applicable; such
	// records are excluded from line-based heuristics.
	Line int

	// Action is the agent action that produced the error (edit, search, ...).
	Action string

	// CodeSnippet is optional code context around the failure.
	CodeSnippet string

	// Traceback is the optional full stack trace.
	Traceback string
}

// NewReport builds a report with the given message text.
func NewReport(message string) Report {
	return Report{Message: &message}
}

// Record is one classified failure event. Immutable once created.
type Record struct {
	// RecordID is a unique identifier for this record (UUID).
	RecordID string

	// Sequence is the insertion index, assigned at add time (0-based).
	Sequence int

	// Type is the classified error category.
	Type ErrorType

	// Message is the original error text.
	Message string

	// File is the originating file path, empty when unknown.
	File string

	// Line is the 1-based line number, 0 when not applicable.
	Line int

	// Action is the agent action that produced the error.
	Action string

	// CodeSnippet is optional code context.
	CodeSnippet string

	// Traceback is the optional full stack trace.
	Traceback string
}
