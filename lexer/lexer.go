// Package lexer implements the greedy, declaration-ordered tokenizer:
// given an ordered list of token declarations, it walks the source
// once, trying each declared pattern in order at the current position
// and accepting the first one that matches a non-empty prefix.
package lexer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-combi/combi"
	"github.com/go-combi/combi/token"
)

// Error codes used by this package:
const (
	// WrongCharError indicates that no declared pattern matches at the
	// current position. The error carries the span [i, i+1) of the
	// offending byte.
	WrongCharError = combi.LexicalErrors + iota
)

// Pattern is either a literal string (matched verbatim) or a regular
// expression, anchored at the current position: it must match starting
// exactly there, never later in the source.
type Pattern struct {
	literal   string
	isLiteral bool
	re        *regexp.Regexp
}

// Literal builds a Pattern that matches s verbatim.
func Literal(s string) Pattern {
	return Pattern{literal: s, isLiteral: true}
}

// Regex builds a Pattern from a regular expression source. The pattern
// is compiled once and reused for every match attempt.
func Regex(source string) (Pattern, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{re: re}, nil
}

// match reports the length of the prefix of src[pos:] matched by p, and
// whether a match was found at all. A zero-length match is reported as
// found=true, matchLen=0 so callers can distinguish "matched nothing"
// from "did not match".
func (p Pattern) match(src string, pos int) (matchLen int, found bool) {
	rest := src[pos:]
	if p.isLiteral {
		if strings.HasPrefix(rest, p.literal) {
			return len(p.literal), true
		}
		return 0, false
	}

	loc := p.re.FindStringIndex(rest)
	if loc == nil || loc[0] != 0 {
		return 0, false
	}
	return loc[1], true
}

// TokenDecl declares one token kind: its name and the pattern that
// recognizes it. Kind is assigned by New, in declaration order.
type TokenDecl struct {
	Name    string
	Pattern Pattern
}

// Lexer tokenizes source text according to an ordered set of token
// declarations. A Lexer is immutable and safe for concurrent use.
type Lexer struct {
	decls []TokenDecl
}

// New creates a Lexer from an ordered list of token declarations. The
// i-th declaration is assigned token.Kind(i).
func New(decls []TokenDecl) *Lexer {
	ds := make([]TokenDecl, len(decls))
	copy(ds, decls)
	return &Lexer{decls: ds}
}

// KindOf returns the Kind assigned to a declared token name, and
// whether that name was declared at all.
func (l *Lexer) KindOf(name string) (token.Kind, bool) {
	for i, d := range l.decls {
		if d.Name == name {
			return token.Kind(i), true
		}
	}
	return token.NoKind, false
}

// NameOf returns the declared name for a Kind, or "" if it is not one
// of this lexer's declared kinds.
func (l *Lexer) NameOf(kind token.Kind) string {
	if kind < 0 || int(kind) >= len(l.decls) {
		return ""
	}
	return l.decls[kind].Name
}

// Tokenize walks source once from position 0, trying each declared
// pattern in declaration order at the current position and accepting
// the first one that matches a non-empty prefix. It returns the full
// token stream on success. On failure it returns a *combi.Error with
// WrongCharError and the span [i, i+1) of the first unrecognized byte.
func (l *Lexer) Tokenize(source string) (token.Stream, token.Span, *combi.Error) {
	var tokens token.Stream
	pos := 0
	n := len(source)

	for pos < n {
		matched := false
		for i, d := range l.decls {
			length, found := d.Pattern.match(source, pos)
			if !found || length == 0 {
				continue
			}
			tokens = append(tokens, token.Token{
				Kind:     token.Kind(i),
				KindName: d.Name,
				Span:     token.Span{Start: pos, End: pos + length},
			})
			pos += length
			matched = true
			break
		}

		if !matched {
			r, _ := utf8.DecodeRuneInString(source[pos:])
			errSpan := token.Span{Start: pos, End: pos + 1}
			return nil, errSpan, combi.FormatError(WrongCharError, "Unrecognized token: %q (u+%x)", r, r)
		}
	}

	return tokens, token.Span{}, nil
}
