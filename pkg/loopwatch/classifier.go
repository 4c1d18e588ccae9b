// classifier.go maps raw error messages to the fixed category taxonomy.

package loopwatch

import (
	"log"
	"regexp"
)

// categoryPatterns is the static ordered classification table. Categories
// are not mutually exclusive by content, so order is a deliberate
// tie-break: the first matching category wins.
var categoryPatterns = []struct {
	errType ErrorType
	sources []string
}{
	{ErrorTypeIndentation, []string{
		`IndentationError|unexpected indent|expected an indented block|unindent does not match`,
	}},
	{ErrorTypeSyntax, []string{
		`SyntaxError|invalid syntax|EOF while scanning|unterminated string|unexpected EOF|invalid character`,
	}},
	{ErrorTypeUndefined, []string{
		`NameError|undefined|not defined|name .* is not defined`,
	}},
	{ErrorTypeImport, []string{
		`ImportError|ModuleNotFoundError|cannot import|No module named`,
	}},
	{ErrorTypeType, []string{
		`TypeError|AttributeError|object has no attribute|takes .* positional argument`,
	}},
	{ErrorTypeLogic, []string{
		`IndexError|KeyError|ValueError|list index out of range|dictionary key error`,
	}},
}

// classifier holds the compiled pattern table for one detector.
type classifier struct {
	entries []classifierEntry
}

type classifierEntry struct {
	errType  ErrorType
	patterns []*regexp.Regexp
}

// newClassifier compiles the built-in table plus any extra per-category
// sources. Extras are tried after the built-ins of the same category.
// A source that fails to compile is skipped and reported through the
// logger; it never aborts classification of the other categories.
func newClassifier(extra map[ErrorType][]string, logger *log.Logger) *classifier {
	c := &classifier{}
	for _, cat := range categoryPatterns {
		sources := append(append([]string{}, cat.sources...), extra[cat.errType]...)
		entry := classifierEntry{errType: cat.errType}
		for _, src := range sources {
			re, err := regexp.Compile(`(?i)` + src)
			if err != nil {
				if logger != nil {
					logger.Printf("loopwatch: skipping malformed %s pattern %q: %v", cat.errType, src, err)
				}
				continue
			}
			entry.patterns = append(entry.patterns, re)
		}
		c.entries = append(c.entries, entry)
	}
	return c
}

// classify maps a message to its error category. The match is a
// case-insensitive search anywhere in the message, not a full match.
// Empty messages and messages matching no category fall back to
// ErrorTypeUnknown.
func (c *classifier) classify(message string) ErrorType {
	if message == "" {
		return ErrorTypeUnknown
	}
	for _, entry := range c.entries {
		for _, re := range entry.patterns {
			if re.MatchString(message) {
				return entry.errType
			}
		}
	}
	return ErrorTypeUnknown
}
