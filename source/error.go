package source

import (
	"strconv"
	"strings"

	"github.com/go-combi/combi"
	"github.com/go-combi/combi/token"
)

// ParseError is the single error type returned to callers of
// Grammar.Parse and Grammar.Tokenize: an underlying *combi.Error,
// together with the source text and the span it points at, so that it
// can render a caret-annotated snippet on demand.
type ParseError struct {
	Err    *combi.Error
	Source *Source
	Span   token.Span
}

// NewParseError builds a ParseError from an inner error and the span it
// points at. If err is already a *combi.Error its message is reused
// unchanged; any other error is wrapped with combi.DriverErrors.
func NewParseError(src *Source, span token.Span, err error) *ParseError {
	ce, ok := err.(*combi.Error)
	if !ok {
		ce = combi.FormatError(combi.DriverErrors, "%s", err.Error())
	}
	return &ParseError{Err: ce, Source: src, Span: span}
}

// Message returns the underlying message without position or snippet.
func (pe *ParseError) Message() string {
	return pe.Err.Message
}

// Error renders the full human-readable diagnostic: message, 1-based
// line/column, and a multi-line snippet with carets under the offending
// span. If the span crosses line boundaries, every covered line gets
// its own caret run.
func (pe *ParseError) Error() string {
	startLine, startCol := pe.Source.LineCol(pe.Span.Start)
	endLine, endCol := pe.Source.LineCol(pe.Span.End)
	if pe.Span.Width() == 0 {
		endLine, endCol = startLine, startCol
	}

	var b strings.Builder
	b.WriteString(pe.Err.Message)
	b.WriteString(" at [")
	b.WriteString(strconv.Itoa(startLine))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(startCol))
	b.WriteString("]\n")

	gutter := len(strconv.Itoa(endLine))
	for line := startLine; line <= endLine; line++ {
		text := pe.Source.Line(line)
		b.WriteString(padLeft(strconv.Itoa(line), gutter))
		b.WriteString(" | ")
		b.WriteString(text)
		b.WriteByte('\n')

		col := 1
		if line == startLine {
			col = startCol
		}
		last := visualWidth(text) + 1
		if line == endLine {
			last = endCol
		}
		width := last - col
		if width < 1 {
			width = 1
		}
		b.WriteString(strings.Repeat(" ", gutter))
		b.WriteString(" | ")
		b.WriteString(strings.Repeat(" ", col-1))
		b.WriteString(strings.Repeat("^", width))
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}

func visualWidth(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func padLeft(s string, width int) string {
	for len(s) < width {
		s = " " + s
	}
	return s
}
