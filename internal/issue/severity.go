// Package issue is the diagnostics subsystem: severity-ordered issues
// raised anywhere in the task tree, captured at the top with a
// deterministic shortest processing path attributing each issue to the
// entry that triggered it.
package issue

// Severity ranks issues. The order is the declaration order: Bug is
// the most severe, Info the least.
type Severity int

// The severities, most severe first.
const (
	Bug Severity = iota
	Fatal
	Error
	Warning
	Hint
	Note
	Suggestions
	Info
)

// String returns the natural string form of the severity.
func (s Severity) String() string {
	switch s {
	case Bug:
		return "bug"
	case Fatal:
		return "fatal"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Hint:
		return "hint"
	case Note:
		return "note"
	case Suggestions:
		return "suggestions"
	case Info:
		return "info"
	}
	return "unknown"
}

// HelpString describes what a severity means to a reader of the
// diagnostic output.
func (s Severity) HelpString() string {
	switch s {
	case Bug:
		return "bug in implementation"
	case Fatal:
		return "unrecoverable problem"
	case Error:
		return "problem that cause a broken result"
	case Warning:
		return "problem should be adressed in short term"
	case Hint:
		return "idea for improvement"
	case Note:
		return "detail that is worth mentioning"
	case Suggestions:
		return "change proposal for improvement"
	case Info:
		return "detail that is worth telling"
	}
	return "unknown"
}
