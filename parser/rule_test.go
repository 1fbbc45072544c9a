package parser

import (
	"testing"

	"github.com/go-combi/combi/ast"
	"github.com/go-combi/combi/token"
)

const (
	kindA token.Kind = iota
	kindB
)

func stateFor(src string, toks ...token.Token) (State, *Helpers) {
	return State{Tokens: token.Stream(toks), Source: src, Index: 0}, NewHelpers(len(src))
}

func tok(kind token.Kind, name string, start, end int) token.Token {
	return token.Token{Kind: kind, KindName: name, Span: token.Span{Start: start, End: end}}
}

func TestTokenSuccessAndFailure(t *testing.T) {
	st, h := stateFor("ab", tok(kindA, "A", 0, 1), tok(kindB, "B", 1, 2))
	r := Token(kindA, "A")

	res, err := r(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if res.State.Index != 1 {
		t.Fatalf("expected index 1, got %d", res.State.Index)
	}

	_, err = Token(kindA, "A")(res.State, h)
	if err == nil {
		t.Fatalf("expected failure matching A against B")
	}
	if err.Span != (token.Span{Start: 1, End: 2}) {
		t.Fatalf("expected span at offending token, got %v", err.Span)
	}
}

func TestEOF(t *testing.T) {
	st, h := stateFor("a", tok(kindA, "A", 0, 1))
	if _, err := EOF()(st, h); err == nil {
		t.Fatalf("expected EOF to fail with a token present")
	}
	next, _ := Token(kindA, "A")(st, h)
	if _, err := EOF()(next.State, h); err != nil {
		t.Fatalf("expected EOF to succeed at end of stream: %s", err)
	}
}

func TestOptionalNeverFails(t *testing.T) {
	st, h := stateFor("a", tok(kindB, "B", 0, 1))
	res, err := Optional(Token(kindA, "A"))(st, h)
	if err != nil {
		t.Fatalf("optional must never fail: %s", err)
	}
	if res.Value != nil {
		t.Fatalf("expected nil value on suppressed failure, got %v", res.Value)
	}
	if res.State.Index != st.Index {
		t.Fatalf("expected unchanged index on suppressed failure")
	}
}

func TestSequencePropagatesFirstFailure(t *testing.T) {
	st, h := stateFor("a", tok(kindA, "A", 0, 1))
	_, err := Sequence(Token(kindA, "A"), Token(kindB, "B"))(st, h)
	if err == nil {
		t.Fatalf("expected sequence to fail on second element")
	}
}

func TestChoiceFurthestErrorWins(t *testing.T) {
	// Two failing alternatives: one fails immediately (span start 0),
	// the other consumes one token before failing (span start 1).
	st, h := stateFor("ab", tok(kindA, "A", 0, 1), tok(kindB, "B", 1, 2))
	shallow := Token(kindB, "B") // fails immediately at index 0
	deep := Sequence(Token(kindA, "A"), Token(kindA, "A")) // fails at index 1

	_, err := Choice(shallow, deep)(st, h)
	if err == nil {
		t.Fatalf("expected both alternatives to fail")
	}
	if err.Span.Start != 1 {
		t.Fatalf("expected furthest error (span start 1), got %d", err.Span.Start)
	}
}

func TestChoiceSucceedsOnFirstMatch(t *testing.T) {
	st, h := stateFor("a", tok(kindA, "A", 0, 1))
	res, err := Choice(Token(kindA, "A"), Token(kindB, "B"))(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if res.State.Index != 1 {
		t.Fatalf("expected index 1, got %d", res.State.Index)
	}
}

func TestChoiceNoAlternatives(t *testing.T) {
	st, h := stateFor("")
	_, err := Choice()(st, h)
	if err == nil {
		t.Fatalf("expected a zero-alternative choice to fail")
	}
}

func TestZeroOrMoreStopsOnZeroLengthMatch(t *testing.T) {
	st, h := stateFor("")
	res, err := ZeroOrMore(Empty())(st, h)
	if err != nil {
		t.Fatalf("zeroOrMore must never fail: %s", err)
	}
	if len(res.Value.([]any)) != 1 {
		t.Fatalf("expected exactly one Empty match before the zero-length guard stops it, got %d", len(res.Value.([]any)))
	}
}

func TestOneOrMoreRequiresAtLeastOne(t *testing.T) {
	st, h := stateFor("a", tok(kindB, "B", 0, 1))
	if _, err := OneOrMore(Token(kindA, "A"))(st, h); err == nil {
		t.Fatalf("expected oneOrMore to fail with zero matches")
	}

	st2, h2 := stateFor("aaa", tok(kindA, "A", 0, 1), tok(kindA, "A", 1, 2), tok(kindA, "A", 2, 3))
	res, err := OneOrMore(Token(kindA, "A"))(st2, h2)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(res.Value.([]any)) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(res.Value.([]any)))
	}
}

func TestListEmptyAllowedWhenMinLenZero(t *testing.T) {
	st, h := stateFor("")
	res, err := List(Token(kindA, "A"), Token(kindB, "B"), 0)(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	items := res.Value.([]any)
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %v", items)
	}
}

func TestListRequiresMinLen(t *testing.T) {
	st, h := stateFor("")
	if _, err := List(Token(kindA, "A"), Token(kindB, "B"), 1)(st, h); err == nil {
		t.Fatalf("expected list with minLen=1 to fail on empty input")
	}
}

func TestListItemsAndSeparators(t *testing.T) {
	// "A,A,A" as three A tokens separated by two B (comma) tokens.
	st, h := stateFor("a,a,a",
		tok(kindA, "A", 0, 1), tok(kindB, "B", 1, 2),
		tok(kindA, "A", 2, 3), tok(kindB, "B", 3, 4),
		tok(kindA, "A", 4, 5),
	)
	res, err := List(Token(kindA, "A"), Token(kindB, "B"), 0)(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	items := res.Value.([]any)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %v", len(items), items)
	}
	if res.State.Index != 5 {
		t.Fatalf("expected all 5 tokens consumed, got index %d", res.State.Index)
	}
}

func TestListLeadingSeparatorIsHardFailure(t *testing.T) {
	// With minLen 0 List yields the empty list without consuming the
	// leading separator, so the enclosing rule (here, EOF) fails on it.
	st, h := stateFor("", tok(kindB, "B", 0, 1), tok(kindA, "A", 1, 2))
	if _, err := Sequence(List(Token(kindA, "A"), Token(kindB, "B"), 0), EOF())(st, h); err == nil {
		t.Fatalf("expected a leading separator to fail, not silently skip to the item")
	}
}

func TestListTrailingSeparatorNotConsumed(t *testing.T) {
	// "A,A," (trailing comma) — List itself must stop after the second
	// A, leaving the trailing separator for whatever rule follows (here,
	// simulated by checking the index did not advance past it).
	st, h := stateFor("a,a,",
		tok(kindA, "A", 0, 1), tok(kindB, "B", 1, 2),
		tok(kindA, "A", 2, 3), tok(kindB, "B", 3, 4),
	)
	res, err := List(Token(kindA, "A"), Token(kindB, "B"), 0)(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if res.State.Index != 3 {
		t.Fatalf("expected index 3 (trailing separator unconsumed), got %d", res.State.Index)
	}
}

func TestMapTransformsValue(t *testing.T) {
	st, h := stateFor("a", tok(kindA, "A", 0, 1))
	res, err := Map(Token(kindA, "A"), func(v any) any {
		return v.(token.Token).KindName + "!"
	})(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if res.Value != "A!" {
		t.Fatalf("expected A!, got %v", res.Value)
	}
}

func TestTextConcatenatesConsumedSource(t *testing.T) {
	src := "foo bar"
	st, h := stateFor(src, tok(kindA, "A", 0, 3), tok(kindA, "A", 4, 7))
	res, err := Text(Sequence(Token(kindA, "A"), Token(kindA, "A")))(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if res.Value != "foo bar" {
		t.Fatalf("expected %q, got %q", "foo bar", res.Value)
	}
}

func TestStructDropsAnonymousFields(t *testing.T) {
	st, h := stateFor("ab", tok(kindA, "A", 0, 1), tok(kindB, "B", 1, 2))
	res, err := Struct(
		Field(AnonymousField, Token(kindA, "A")),
		Field("b", Token(kindB, "B")),
	)(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	fields := res.Value.(map[string]any)
	if len(fields) != 1 {
		t.Fatalf("expected one named field, got %v", fields)
	}
	if _, ok := fields["b"]; !ok {
		t.Fatalf("expected field b, got %v", fields)
	}
}

func TestNodeWrapsValueAndSpans(t *testing.T) {
	st, h := stateFor("ab", tok(kindA, "A", 0, 1), tok(kindB, "B", 1, 2))
	res, err := Node("Pair", Sequence(Token(kindA, "A"), Token(kindB, "B")))(st, h)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	n := res.Value.(ast.Node)
	if n.Type != "Pair" {
		t.Fatalf("expected type Pair, got %s", n.Type)
	}
	if len(n.Tokens) != 2 {
		t.Fatalf("expected 2 recorded token spans, got %d", len(n.Tokens))
	}
}
