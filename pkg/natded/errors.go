package natded

import (
	"errors"
	"fmt"
	"strings"
)

// Location is a 1-indexed position in proof-script source.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("[%d, %d]", l.Line, l.Column)
}

// Located is implemented by errors that point at a source position.
type Located interface {
	error
	SourceLocation() Location
}

// LexError reports a character that starts no token.
type LexError struct {
	Location Location
	Char     rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("unexpected character %q at %s", e.Char, e.Location)
}

func (e *LexError) SourceLocation() Location { return e.Location }

// ParseError reports a grammar violation.
type ParseError struct {
	Location Location
	Expected []TokenKind
	Got      TokenKind
	// Message overrides the expected/got rendering when set.
	Message string
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s at %s", e.Message, e.Location)
	}
	names := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		names[i] = k.String()
	}
	return fmt.Sprintf("expected %s, got %s at %s", strings.Join(names, " or "), e.Got, e.Location)
}

func (e *ParseError) SourceLocation() Location { return e.Location }

// TransformError reports a semantic problem found while generating code.
type TransformError struct {
	Location Location
	Message  string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Location)
}

func (e *TransformError) SourceLocation() Location { return e.Location }

// Warning is a non-fatal problem found while generating code.
type Warning struct {
	Location Location
	Message  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s at %s", w.Message, w.Location)
}

// SourceError attaches a file name and source text to a located error so it
// can be rendered with the offending line underlined.
type SourceError struct {
	Inner    error
	Filename string
	Location Location
	Length   int
	Source   string
}

// NewSourceError wraps err with file context if it carries a location, and
// returns it unchanged otherwise.
func NewSourceError(err error, filename, source string) error {
	var located Located
	if !errors.As(err, &located) {
		return err
	}
	var already *SourceError
	if errors.As(err, &already) {
		return err
	}
	return &SourceError{
		Inner:    err,
		Filename: filename,
		Location: located.SourceLocation(),
		Length:   1,
		Source:   source,
	}
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

func (e *SourceError) Error() string {
	return e.FormatWithHighlighting()
}

// FormatWithHighlighting renders the error with two lines of context around
// the offending line and a caret under the offending column.
func (e *SourceError) FormatWithHighlighting() string {
	lines := splitLines(e.Source)
	if e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Inner.Error()
	}

	const (
		red   = "\033[31m"
		blue  = "\033[34m"
		bold  = "\033[1m"
		reset = "\033[0m"
		dim   = "\033[2m"
	)

	var result strings.Builder

	fmt.Fprintf(&result, "%s%sError:%s %s\n", bold, red, reset, e.Inner)
	fmt.Fprintf(&result, "  %s%s--> %s:%d:%d%s\n", dim, blue, e.Filename, e.Location.Line, e.Location.Column, reset)
	fmt.Fprintf(&result, " %s%s |%s\n", dim, padLeft("", 3), reset)

	startLine := max(1, e.Location.Line-2)
	endLine := min(len(lines), e.Location.Line+2)

	for i := startLine; i <= endLine; i++ {
		num := padLeft(fmt.Sprintf("%d", i), 3)
		if i == e.Location.Line {
			fmt.Fprintf(&result, " %s%s%s%s | %s%s\n", dim, blue, bold, num, reset, lines[i-1])
			padding := strings.Repeat(" ", 1+3+3+e.Location.Column-1)
			underline := strings.Repeat("^", max(1, e.Length))
			fmt.Fprintf(&result, "%s%s%s%s%s\n", dim, padding, red, underline, reset)
		} else {
			fmt.Fprintf(&result, " %s%s | %s%s\n", dim, num, lines[i-1], reset)
		}
	}

	fmt.Fprintf(&result, " %s%s |%s\n", dim, padLeft("", 3), reset)

	return result.String()
}

// splitLines splits on the same line breaks the scanner counts.
func splitLines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return strings.Split(src, "\n")
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
