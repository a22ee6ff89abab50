// Package ui renders captured issues for the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/vercel/turbopack/cli/internal/issue"
)

// IsTTY is true when stdout appears to be a tty.
var IsTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var gray = color.New(color.Faint)
var bold = color.New(color.Bold)

var severityColors = map[issue.Severity]*color.Color{
	issue.Bug:         color.New(color.Bold, color.FgRed, color.ReverseVideo),
	issue.Fatal:       color.New(color.Bold, color.FgRed, color.ReverseVideo),
	issue.Error:       color.New(color.Bold, color.FgRed),
	issue.Warning:     color.New(color.Bold, color.FgYellow),
	issue.Hint:        color.New(color.Bold, color.FgCyan),
	issue.Note:        color.New(color.Bold, color.FgWhite),
	issue.Suggestions: color.New(color.Bold, color.FgGreen),
	issue.Info:        color.New(color.Bold, color.FgWhite),
}

// Dim prints out dimmed text.
func Dim(str string) string {
	return gray.Sprint(str)
}

// Bold prints out bolded text.
func Bold(str string) string {
	return bold.Sprint(str)
}

// SeverityPrefix renders " ERROR "-style severity tags.
func SeverityPrefix(severity issue.Severity) string {
	c, ok := severityColors[severity]
	if !ok {
		c = severityColors[issue.Info]
	}
	return c.Sprintf(" %s ", strings.ToUpper(severity.String()))
}

// RenderIssue writes one captured issue with its processing path.
func RenderIssue(w io.Writer, captured issue.CapturedIssue) {
	i := captured.Issue
	fmt.Fprintf(w, "%s %s\n", SeverityPrefix(i.Severity()), Bold(i.Title()))
	fmt.Fprintf(w, "  %s\n", i.Context().ToString())
	if description := i.Description(); description != "" {
		fmt.Fprintf(w, "  %s\n", description)
	}
	if source := i.Source(); source != nil {
		fmt.Fprintf(w, "  at %s:%d:%d\n", source.Asset.Path().ToString(), source.Start.Line+1, source.Start.Column+1)
	}
	if captured.HasPath && len(captured.Path) > 0 {
		for _, item := range captured.Path {
			fmt.Fprintf(w, "  %s\n", Dim("via "+item.String()))
		}
	}
	for _, sub := range i.SubIssues() {
		fmt.Fprintf(w, "  %s %s\n", SeverityPrefix(sub.Severity()), sub.Title())
	}
}

// RenderCapturedIssues writes every captured issue with its shortest
// processing path.
func RenderCapturedIssues(w io.Writer, captured *issue.CapturedIssues) error {
	withPaths, err := captured.WithShortestPaths()
	if err != nil {
		return err
	}
	for _, item := range withPaths {
		RenderIssue(w, item)
	}
	return nil
}
