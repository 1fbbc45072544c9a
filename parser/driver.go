package parser

import (
	"github.com/go-combi/combi"
	"github.com/go-combi/combi/ast"
	"github.com/go-combi/combi/source"
	"github.com/go-combi/combi/token"
)

// Error codes used by the evaluator driver (parse-time errors, distinct
// from the authoring errors raised by Build):
const (
	// UnconsumedInputError indicates the root rule succeeded but left
	// tokens unconsumed: the grammar matched a prefix of the input, not
	// all of it.
	UnconsumedInputError = combi.DriverErrors + iota
)

// Tokenize runs the grammar's lexer over src, returning the resulting
// token stream or a *source.ParseError pointing at the first
// unrecognized byte.
func (g *Grammar) Tokenize(sourceName, src string) (token.Stream, error) {
	tokens, errSpan, lerr := g.lex.Tokenize(src)
	if lerr != nil {
		return nil, source.NewParseError(source.New(sourceName, src), errSpan, lerr)
	}
	return tokens, nil
}

// Parse tokenizes src and runs the grammar's root rule over the
// resulting stream, per the evaluator driver's algorithm: tokenize,
// evaluate the root rule from index 0, and require that it consume
// every token. Any failure, lexical or grammatical, is returned as a
// *source.ParseError carrying a caret-renderable span.
func (g *Grammar) Parse(sourceName, src string) (*ast.Node, error) {
	tokens, err := g.Tokenize(sourceName, src)
	if err != nil {
		return nil, err
	}

	srcObj := source.New(sourceName, src)
	st := State{Tokens: tokens, Source: src, Index: 0}
	h := NewHelpers(len(src))

	root := g.rules[g.root]
	res, rerr := root(st, h)
	if rerr != nil {
		return nil, source.NewParseError(srcObj, rerr.Span, combi.FormatError(combi.RuleErrors, "%s", rerr.Message))
	}

	if res.State.Index < tokens.Len() {
		t, _ := tokens.At(res.State.Index)
		return nil, source.NewParseError(srcObj, t.Span, combi.FormatError(UnconsumedInputError, "Expected end of input"))
	}

	node := res.Value.(ast.Node)
	return &node, nil
}
