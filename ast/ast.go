// Package ast defines the abstract syntax tree produced by a parse:
// a closed set of node types, each carrying a structurally-typed
// properties value and the ordered token spans consumed to build it.
package ast

import "github.com/go-combi/combi/token"

// NodeType names one of the closed set of AST node kinds declared by a
// grammar's uppercase-led node rules.
type NodeType string

// Node is an AST node. Properties is either a map[string]any (built by
// a Struct rule), a []any (built by a Sequence/List rule), or whatever
// plain value the wrapped rule produced (e.g. a string, from Text).
// Tokens records every leaf token span consumed while producing this
// node, in consumption order; it is informational only and is never
// consulted by any combinator while parsing.
type Node struct {
	Type       NodeType
	Properties any
	Tokens     []token.Span
}

// Field looks up a named property on a node built by a Struct rule.
// Returns false if Properties is not a map or the key is absent.
func (n *Node) Field(name string) (any, bool) {
	m, ok := n.Properties.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// Item returns the i-th positional property on a node built by a
// Sequence/List rule. Returns false if Properties is not a slice or i
// is out of range.
func (n *Node) Item(i int) (any, bool) {
	s, ok := n.Properties.([]any)
	if !ok || i < 0 || i >= len(s) {
		return nil, false
	}
	return s[i], true
}

// TokenFactory builds a Token of a fixed, closed-over kind at a given
// span, matching the "tokens.<K>(span)" surface of the DSL frontend.
type TokenFactory func(span token.Span) token.Token

// NodeFactory builds a Node of a fixed, closed-over type from a
// properties value and an optional token-span list, matching the
// "nodes.<T>(properties, tokenSpans?)" surface of the DSL frontend.
type NodeFactory func(properties any, tokens []token.Span) Node
