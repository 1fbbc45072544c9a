// Package source holds the original source text together with
// line/column resolution and caret-annotated parse-error rendering.
package source

import (
	"bytes"
	"unicode/utf8"
)

// Source wraps a named piece of source text and memoizes the byte
// offset of the start of each line so that LineCol can resolve a byte
// position to a 1-based line/column pair without rescanning the text.
type Source struct {
	name          string
	content       string
	lineStarts    []int
	prevLineIndex int
}

// New creates a Source from a name and its full content.
func New(name, content string) *Source {
	s := &Source{name: name, prevLineIndex: -1, content: content}
	lineCnt := bytes.Count([]byte(content), []byte("\n")) + 1
	s.lineStarts = make([]int, lineCnt)
	j := 1
	for i := 0; i < len(content) && j < lineCnt; i++ {
		if content[i] == '\n' {
			s.lineStarts[j] = i + 1
			j++
		}
	}
	return s
}

// Name returns the source's name (file name, or whatever label the
// caller supplied).
func (s *Source) Name() string {
	return s.name
}

// Content returns the full source text.
func (s *Source) Content() string {
	return s.content
}

// Len returns the length of the source in bytes.
func (s *Source) Len() int {
	return len(s.content)
}

// LineCol resolves a byte offset to a 1-based line and column. Columns
// are counted in runes, not bytes. Out-of-range positions are clamped
// to the nearest valid one.
func (s *Source) LineCol(pos int) (line, col int) {
	var lineIndex int
	switch {
	case pos < 0:
		pos = 0
		lineIndex = 0
	case pos >= len(s.content):
		pos = len(s.content)
		lineIndex = len(s.lineStarts) - 1
	default:
		lineIndex = s.findLineIndex(pos)
	}

	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCountInString(s.content[lineStart:pos]) + 1
}

// Line returns the text of the given 1-based line number, without its
// trailing newline. Out-of-range line numbers are clamped.
func (s *Source) Line(line int) string {
	if line < 1 {
		line = 1
	}
	if line > len(s.lineStarts) {
		line = len(s.lineStarts)
	}
	start := s.lineStarts[line-1]
	end := len(s.content)
	if line < len(s.lineStarts) {
		end = s.lineStarts[line]
	}
	for end > start && (s.content[end-1] == '\n' || s.content[end-1] == '\r') {
		end--
	}
	return s.content[start:end]
}

// LineCount returns the number of lines in the source.
func (s *Source) LineCount() int {
	return len(s.lineStarts)
}

func (s *Source) findLineIndex(pos int) int {
	if s.prevLineIndex >= 0 && s.lineStarts[s.prevLineIndex] <= pos {
		lineIndex := s.prevLineIndex
		last := len(s.lineStarts) - 1
		for lineIndex <= last && s.lineStarts[lineIndex] <= pos {
			lineIndex++
		}
		lineIndex--
		s.prevLineIndex = lineIndex
		return lineIndex
	}

	leftIndex := 0
	rightIndex := len(s.lineStarts) - 1
	if s.prevLineIndex >= 0 {
		rightIndex = s.prevLineIndex
	}
	index := 0
	for leftIndex < rightIndex {
		index = (leftIndex + rightIndex + 1) >> 1
		lineStart := s.lineStarts[index]
		if lineStart == pos {
			break
		}
		if lineStart < pos {
			leftIndex = index
		} else {
			rightIndex = index - 1
			index = rightIndex
		}
	}
	s.prevLineIndex = index
	return index
}

// Pos is a resolved position within a Source: a byte offset plus its
// 1-based line and column, satisfying combi.SourcePos.
type Pos struct {
	src       *Source
	pos       int
	line, col int
}

// NewPos resolves a byte offset within src into a Pos.
func NewPos(src *Source, pos int) Pos {
	line, col := src.LineCol(pos)
	return Pos{src, pos, line, col}
}

func (p Pos) Source() *Source { return p.src }
func (p Pos) Pos() int        { return p.pos }
func (p Pos) Line() int       { return p.line }
func (p Pos) Col() int        { return p.col }

// SourceName implements combi.SourcePos.
func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.Name()
}
