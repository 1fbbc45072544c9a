// Package parser implements the combinator algebra over a token
// stream, the grammar assembly that resolves named rules (including
// mutually recursive ones) into a combinator graph, and the evaluator
// driver that runs a grammar's root rule over a source string.
//
// These three concerns live in one package, in the same spirit as the
// teacher library this module grew out of, which keeps its combinator
// primitives, grammar wiring, and driver in a single "parser" package:
// rule.go holds the combinator primitives, grammar.go the assembly and
// lazy resolver, driver.go the evaluator driver.
package parser

import (
	"fmt"

	"github.com/go-combi/combi/ast"
	"github.com/go-combi/combi/token"
)

// State is the input threaded through every combinator: the full token
// stream, the source text tokens were cut from, and the current read
// position. Index is monotonically non-decreasing along any chain of
// successful combinator calls; a failing combinator never changes it
// for its caller.
type State struct {
	Tokens token.Stream
	Source string
	Index  int
}

// RuleError is returned by a failing combinator: a message and the
// span at which it could not proceed (the offending token's span, or
// the stream's EOF span).
type RuleError struct {
	Message string
	Span    token.Span
}

func (e *RuleError) Error() string {
	return e.Message
}

func newRuleError(span token.Span, format string, args ...any) *RuleError {
	return &RuleError{Message: fmt.Sprintf(format, args...), Span: span}
}

// Result is what a combinator produces on success: the new state, the
// value it computed, and the ordered tokens it consumed (for Text and
// for the token-tree recorded on AST nodes).
type Result struct {
	State    State
	Value    any
	Consumed []token.Token
}

// Helpers bundles position-independent facts a combinator needs beyond
// the state itself: the precomputed end-of-file span, and small
// accessors over a state's token stream.
type Helpers struct {
	eofSpan token.Span
}

// NewHelpers precomputes the EOF span for a source of the given length.
func NewHelpers(sourceLen int) *Helpers {
	return &Helpers{eofSpan: token.Span{Start: sourceLen, End: sourceLen}}
}

// EOFSpan returns the precomputed end-of-file span.
func (h *Helpers) EOFSpan() token.Span {
	return h.eofSpan
}

// TokenAt reads the token at position i of st's stream. Reading past
// the end returns the zero Token and false, distinct from any declared
// kind.
func (h *Helpers) TokenAt(st State, i int) (token.Token, bool) {
	return st.Tokens.At(i)
}

// CurrentSpan is the span a combinator should report a failure at: the
// current token's span if there is one, otherwise the EOF span.
func (h *Helpers) CurrentSpan(st State) token.Span {
	if t, ok := h.TokenAt(st, st.Index); ok {
		return t.Span
	}
	return h.eofSpan
}

// Rule is a parser combinator: given an input state and the shared
// helpers, it yields a Result on success or a RuleError on failure.
// Exactly one of the two return values is non-nil/non-zero.
type Rule func(st State, h *Helpers) (Result, *RuleError)

// Token builds a combinator that succeeds iff the current token exists
// and has the given kind, advancing by one token.
func Token(kind token.Kind, kindName string) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		t, ok := h.TokenAt(st, st.Index)
		if !ok || t.Kind != kind {
			return Result{}, newRuleError(h.CurrentSpan(st), "Expected token: %s", kindName)
		}
		return Result{
			State:    State{Tokens: st.Tokens, Source: st.Source, Index: st.Index + 1},
			Value:    t,
			Consumed: []token.Token{t},
		}, nil
	}
}

// Empty always succeeds, consumes nothing, and produces a nil value.
func Empty() Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		return Result{State: st}, nil
	}
}

// EOF succeeds iff there is no token at the current position.
func EOF() Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		if t, ok := h.TokenAt(st, st.Index); ok {
			return Result{}, newRuleError(t.Span, "Expected end of input")
		}
		return Result{State: st}, nil
	}
}

// Optional never fails: it yields r's value on success, or a nil value
// with no state change if r failed.
func Optional(r Rule) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		res, err := r(st, h)
		if err != nil {
			return Result{State: st}, nil
		}
		return res, nil
	}
}

// Sequence succeeds iff every rule succeeds in order, threading state
// from one to the next. Its value is the tuple of each rule's value,
// as a []any in listed order; its failure is the first inner failure,
// propagated verbatim.
func Sequence(rs ...Rule) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		cur := st
		values := make([]any, len(rs))
		var consumed []token.Token
		for i, r := range rs {
			res, err := r(cur, h)
			if err != nil {
				return Result{}, err
			}
			values[i] = res.Value
			consumed = append(consumed, res.Consumed...)
			cur = res.State
		}
		return Result{State: cur, Value: values, Consumed: consumed}, nil
	}
}

// Choice succeeds iff any alternative succeeds, trying them strictly in
// order and stopping at the first success. If every alternative fails,
// the returned error is the one whose span has the greatest Start;
// ties resolve to the earliest-listed alternative.
func Choice(rs ...Rule) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		if len(rs) == 0 {
			return Result{}, newRuleError(h.CurrentSpan(st), "No choices available")
		}

		var furthest *RuleError
		for _, r := range rs {
			res, err := r(st, h)
			if err == nil {
				return res, nil
			}
			if furthest == nil || err.Span.Start > furthest.Span.Start {
				furthest = err
			}
		}
		return Result{}, furthest
	}
}

// ZeroOrMore always succeeds, collecting values from repeated
// successful applications of r until r fails or succeeds without
// advancing the position (which would otherwise loop forever).
func ZeroOrMore(r Rule) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		cur := st
		values := make([]any, 0)
		var consumed []token.Token
		for {
			res, err := r(cur, h)
			if err != nil {
				break
			}
			values = append(values, res.Value)
			consumed = append(consumed, res.Consumed...)
			if res.State.Index == cur.Index {
				cur = res.State
				break
			}
			cur = res.State
		}
		return Result{State: cur, Value: values, Consumed: consumed}, nil
	}
}

// OneOrMore succeeds iff r succeeds at least once, with the same
// zero-length-match guard as ZeroOrMore. Its failure is r's error at
// the first attempt.
func OneOrMore(r Rule) Rule {
	zm := ZeroOrMore(r)
	return func(st State, h *Helpers) (Result, *RuleError) {
		first, err := r(st, h)
		if err != nil {
			return Result{}, err
		}

		rest, _ := zm(first.State, h)
		values := append([]any{first.Value}, rest.Value.([]any)...)
		consumed := append(append([]token.Token{}, first.Consumed...), rest.Consumed...)
		return Result{State: rest.State, Value: values, Consumed: consumed}, nil
	}
}

// List matches item (sep item)* with exact semantics depending on
// minLen:
//
//   - minLen <= 0: optional(inner(1)), substituting the empty list on
//     failure;
//   - otherwise: item followed by (sep then item) repeated at least
//     minLen-1 times, then (sep then item) zero or more times.
//
// Separator values are discarded; the result is the ordered list of
// item values. A leading separator is never skipped: with minLen <= 0
// List yields the empty list without consuming it, and with minLen > 0
// List fails on it. A trailing separator is never consumed by List
// itself either. In both cases the separator surfaces as a failure in
// whatever follows (typically EOF or a closing bracket).
func List(item, sep Rule, minLen int) Rule {
	pairItem := Map(Sequence(sep, item), func(v any) any {
		return v.([]any)[1]
	})

	inner := func(m int) Rule {
		if m <= 0 {
			m = 1
		}
		required := make([]Rule, m)
		required[0] = item
		for i := 1; i < m; i++ {
			required[i] = pairItem
		}
		return Sequence(append(required, ZeroOrMore(pairItem))...)
	}

	if minLen <= 0 {
		one := Optional(inner(1))
		return Map(one, func(v any) any {
			if v == nil {
				return []any{}
			}
			return flattenList(v.([]any))
		})
	}

	return Map(inner(minLen), func(v any) any {
		return flattenList(v.([]any))
	})
}

// flattenList turns the nested [item1, item2, ..., [rest...]] shape
// produced by inner's Sequence into a flat []any of item values.
func flattenList(parts []any) []any {
	tail := parts[len(parts)-1].([]any)
	result := make([]any, 0, len(parts)-1+len(tail))
	result = append(result, parts[:len(parts)-1]...)
	result = append(result, tail...)
	return result
}

// Map succeeds iff r succeeds, transforming its value with f.
func Map(r Rule, f func(any) any) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		res, err := r(st, h)
		if err != nil {
			return Result{}, err
		}
		res.Value = f(res.Value)
		return res, nil
	}
}

// Text succeeds iff r succeeds, producing the source text from the
// start of r's first consumed token to the end of its last (for a
// lexer that covers the input without gaps, this equals the
// concatenation of the consumed tokens' text). It produces "" when r
// consumed no tokens.
func Text(r Rule) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		res, err := r(st, h)
		if err != nil {
			return Result{}, err
		}
		if len(res.Consumed) == 0 {
			res.Value = ""
			return res, nil
		}
		start := res.Consumed[0].Span.Start
		end := res.Consumed[len(res.Consumed)-1].Span.End
		res.Value = st.Source[start:end]
		return res, nil
	}
}

// AnonymousField drops its value from the enclosing Struct's result.
const AnonymousField = ""

// FieldDesc names one field of a Struct: Key, or AnonymousField to
// parse it but drop its value.
type FieldDesc struct {
	Key  string
	Rule Rule
}

// Field builds a FieldDesc.
func Field(key string, r Rule) FieldDesc {
	return FieldDesc{Key: key, Rule: r}
}

// Struct succeeds iff every field rule succeeds in listed order,
// producing a map[string]any of named fields (anonymous fields parsed
// but omitted). Its failure is the first inner failure.
func Struct(fields ...FieldDesc) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		cur := st
		values := make(map[string]any, len(fields))
		var consumed []token.Token
		for _, f := range fields {
			res, err := f.Rule(cur, h)
			if err != nil {
				return Result{}, err
			}
			if f.Key != AnonymousField {
				values[f.Key] = res.Value
			}
			consumed = append(consumed, res.Consumed...)
			cur = res.State
		}
		return Result{State: cur, Value: values, Consumed: consumed}, nil
	}
}

// Node succeeds iff r succeeds, wrapping its value and consumed-token
// spans into an ast.Node of type t.
func Node(t ast.NodeType, r Rule) Rule {
	return func(st State, h *Helpers) (Result, *RuleError) {
		res, err := r(st, h)
		if err != nil {
			return Result{}, err
		}
		spans := make([]token.Span, len(res.Consumed))
		for i, tok := range res.Consumed {
			spans[i] = tok.Span
		}
		res.Value = ast.Node{Type: t, Properties: res.Value, Tokens: spans}
		return res, nil
	}
}
