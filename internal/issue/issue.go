package issue

import (
	"github.com/vercel/turbopack/cli/internal/fs"
	"github.com/vercel/turbopack/cli/internal/tasks"
)

// Issue is a diagnostic raised during processing. Implementations are
// compared by identity; the same Issue value raised twice is one
// issue.
type Issue interface {
	Severity() Severity
	// Context is the path the issue is about, usually the file being
	// processed when it was raised.
	Context() fs.Path
	Category() string
	Title() string
	Description() string
	DocumentationLink() string
	// Source optionally locates a span inside an asset.
	Source() *Source
	SubIssues() []Issue
}

// Base carries the fields most issues share and provides the defaults
// the Issue interface promises: severity Error (set by NewBase; a
// zero Base reports Bug), empty category and docs link, no source, no
// sub-issues. Concrete issue types embed it and override what they
// need.
type Base struct {
	IssueSeverity    Severity
	IssueContext     fs.Path
	IssueTitle       string
	IssueDescription string
}

// NewBase builds a Base with the default Error severity.
func NewBase(context fs.Path, title string, description string) Base {
	return Base{
		IssueSeverity:    Error,
		IssueContext:     context,
		IssueTitle:       title,
		IssueDescription: description,
	}
}

// Severity implements Issue.Severity.
func (b *Base) Severity() Severity { return b.IssueSeverity }

// Context implements Issue.Context.
func (b *Base) Context() fs.Path { return b.IssueContext }

// Category implements Issue.Category.
func (b *Base) Category() string { return "" }

// Title implements Issue.Title.
func (b *Base) Title() string { return b.IssueTitle }

// Description implements Issue.Description.
func (b *Base) Description() string { return b.IssueDescription }

// DocumentationLink implements Issue.DocumentationLink.
func (b *Base) DocumentationLink() string { return "" }

// Source implements Issue.Source.
func (b *Base) Source() *Source { return nil }

// SubIssues implements Issue.SubIssues.
func (b *Base) SubIssues() []Issue { return nil }

// Emit raises the issue from the current task and roots a trivial
// processing path for it, so every raised issue has at least an
// attribution to itself.
func Emit(ctx *tasks.Context, i Issue) {
	ctx.Emit(i)
	ctx.Emit(ProcessingPath(&rootProcessingPath{issue: i}))
}

func isIssue(value interface{}) bool {
	_, ok := value.(Issue)
	return ok
}

func isProcessingPath(value interface{}) bool {
	_, ok := value.(ProcessingPath)
	return ok
}
