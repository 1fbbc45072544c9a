package parser

import (
	"sort"
	"unicode"

	"github.com/go-combi/combi/ast"
	"github.com/go-combi/combi/internal/ints"
	"github.com/go-combi/combi/lexer"
	"github.com/go-combi/combi/token"
)

// TokenDecl declares one token kind for a grammar: its name and the
// pattern that recognizes it, tried in declaration order by the lexer.
type TokenDecl = lexer.TokenDecl

// Rules is the lazy-resolver handle passed to every rule Factory. Its
// Rule method returns a combinator that refers to another token kind or
// rule by name, resolved no earlier than when that combinator is
// itself evaluated — which is what makes mutual recursion between rule
// Factories possible without forward declarations.
type Rules interface {
	// Rule returns a combinator delegating to the token kind or rule
	// registered under name. Factories must only store what Rule
	// returns, never invoke it immediately: the combinator API already
	// enforces this, since every primitive here takes Rule values as
	// operands and never calls them during construction.
	Rule(name string) Rule
}

// Factory builds a rule's combinator given a Rules handle to resolve
// any other rule or token it references by name.
type Factory func(Rules) Rule

// RuleDecl declares one named rule: node rules (uppercase-led names)
// are wrapped in Node(name, ...) automatically by Build; alias rules
// (lowercase-led names) pass their Factory's result through unchanged.
type RuleDecl struct {
	Name    string
	Factory Factory
}

// Grammar is an immutable, built parser: a lexer, a resolved rule
// table, and a chosen root rule. A built Grammar is safe for
// concurrent Parse/Tokenize calls.
type Grammar struct {
	tokenDecls []TokenDecl
	ruleDecls  []RuleDecl
	root       string
	lex        *lexer.Lexer
	rules      map[string]Rule
	tokenKinds map[string]token.Kind
	nodeNames  map[string]bool
}

func isNodeName(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}

type rulesHandle struct {
	registry      map[string]Rule
	tokenKinds    map[string]token.Kind
	ruleIndex     map[string]int
	referenced    *ints.Set
	undefined     []string
	undefinedSeen map[string]bool
}

func (rh *rulesHandle) Rule(name string) Rule {
	if kind, ok := rh.tokenKinds[name]; ok {
		return Token(kind, name)
	}
	if idx, ok := rh.ruleIndex[name]; ok {
		rh.referenced.Add(idx)
		return func(st State, h *Helpers) (Result, *RuleError) {
			target := rh.registry[name]
			return target(st, h)
		}
	}

	if !rh.undefinedSeen[name] {
		rh.undefinedSeen[name] = true
		rh.undefined = append(rh.undefined, name)
	}
	return func(st State, h *Helpers) (Result, *RuleError) {
		return Result{}, newRuleError(h.CurrentSpan(st), "reference to undefined rule: %s", name)
	}
}

// Build assembles a Grammar from an ordered list of token declarations
// and an ordered list of rule declarations. root selects the AST root
// rule; pass "" to use the first node rule (uppercase-led name) in
// declaration order, as §4.6 specifies for the DSL frontend.
func Build(tokenDecls []TokenDecl, ruleDecls []RuleDecl, root string) (*Grammar, error) {
	tokenKinds := make(map[string]token.Kind, len(tokenDecls))
	for i, td := range tokenDecls {
		if _, dup := tokenKinds[td.Name]; dup {
			return nil, duplicateTokenError(td.Name)
		}
		tokenKinds[td.Name] = token.Kind(i)
	}

	ruleIndex := make(map[string]int, len(ruleDecls))
	for i, rd := range ruleDecls {
		if _, dup := ruleIndex[rd.Name]; dup {
			return nil, duplicateRuleError(rd.Name)
		}
		if _, clash := tokenKinds[rd.Name]; clash {
			return nil, nameCollisionError(rd.Name)
		}
		ruleIndex[rd.Name] = i
	}

	registry := make(map[string]Rule, len(ruleDecls))
	rh := &rulesHandle{
		registry:      registry,
		tokenKinds:    tokenKinds,
		ruleIndex:     ruleIndex,
		referenced:    ints.NewSet(),
		undefinedSeen: make(map[string]bool),
	}

	nodeNames := make(map[string]bool)
	for _, rd := range ruleDecls {
		inner := rd.Factory(rh)
		if isNodeName(rd.Name) {
			registry[rd.Name] = Node(nodeTypeOf(rd.Name), inner)
			nodeNames[rd.Name] = true
		} else {
			registry[rd.Name] = inner
		}
	}

	if len(rh.undefined) > 0 {
		sort.Strings(rh.undefined)
		return nil, undefinedRuleError(rh.undefined)
	}

	if root == "" {
		for _, rd := range ruleDecls {
			if isNodeName(rd.Name) {
				root = rd.Name
				break
			}
		}
		if root == "" {
			return nil, noRootRuleError()
		}
	} else {
		if _, ok := ruleIndex[root]; !ok {
			return nil, badRootRuleError(root, "root rule not declared")
		}
		if !isNodeName(root) {
			return nil, badRootRuleError(root, "root rule must be a node rule (uppercase-led name)")
		}
	}
	rh.referenced.Add(ruleIndex[root])

	var unused []string
	for _, rd := range ruleDecls {
		if !rh.referenced.Contains(ruleIndex[rd.Name]) {
			unused = append(unused, rd.Name)
		}
	}
	if len(unused) > 0 {
		return nil, unusedRuleError(unused)
	}

	return &Grammar{
		tokenDecls: append([]TokenDecl{}, tokenDecls...),
		ruleDecls:  append([]RuleDecl{}, ruleDecls...),
		root:       root,
		lex:        lexer.New(tokenDecls),
		rules:      registry,
		tokenKinds: tokenKinds,
		nodeNames:  nodeNames,
	}, nil
}

func nodeTypeOf(name string) ast.NodeType { return ast.NodeType(name) }

// Extend returns a new Grammar with extraRules merged over g's own rule
// declarations (same-named entries are overridden), applying the same
// lazy-resolver discipline to the union. g itself is not mutated. Pass
// a non-empty newRoot to change the AST root; otherwise the extended
// grammar keeps g's current root (unless it was itself overridden by
// extraRules, in which case the override is rebuilt in place).
func Extend(g *Grammar, extraRules []RuleDecl, newRoot string) (*Grammar, error) {
	merged := make([]RuleDecl, 0, len(g.ruleDecls)+len(extraRules))
	index := make(map[string]int, len(g.ruleDecls))
	for _, rd := range g.ruleDecls {
		index[rd.Name] = len(merged)
		merged = append(merged, rd)
	}
	for _, rd := range extraRules {
		if i, ok := index[rd.Name]; ok {
			merged[i] = rd
		} else {
			index[rd.Name] = len(merged)
			merged = append(merged, rd)
		}
	}

	root := newRoot
	if root == "" {
		root = g.root
	}
	return Build(g.tokenDecls, merged, root)
}

// Root returns the name of the grammar's AST root rule.
func (g *Grammar) Root() string {
	return g.root
}

// Tokens returns a token-name-keyed factory map, one constructor per
// declared token kind.
func (g *Grammar) Tokens() map[string]ast.TokenFactory {
	result := make(map[string]ast.TokenFactory, len(g.tokenKinds))
	for name, kind := range g.tokenKinds {
		k, n := kind, name
		result[n] = func(span token.Span) token.Token {
			return token.Token{Kind: k, KindName: n, Span: span}
		}
	}
	return result
}

// Nodes returns a node-type-keyed factory map, one constructor per
// declared node type.
func (g *Grammar) Nodes() map[string]ast.NodeFactory {
	result := make(map[string]ast.NodeFactory, len(g.nodeNames))
	for name := range g.nodeNames {
		t := ast.NodeType(name)
		result[name] = func(properties any, tokens []token.Span) ast.Node {
			return ast.Node{Type: t, Properties: properties, Tokens: tokens}
		}
	}
	return result
}
