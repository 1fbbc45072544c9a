package langdef

import (
	"strconv"
	"strings"

	"github.com/go-combi/combi/ast"
	"github.com/go-combi/combi/lexer"
	"github.com/go-combi/combi/parser"
)

// lower walks a parsed Program node (produced by the meta-grammar) and
// builds the token and rule declarations of the grammar it describes,
// ready for parser.Build.
func lower(program ast.Node) ([]parser.TokenDecl, []parser.RuleDecl, error) {
	var tokens []parser.TokenDecl
	var rules []parser.RuleDecl

	for _, item := range program.Properties.([]any) {
		decl := item.(ast.Node)
		switch decl.Type {
		case "TerminalRule":
			m := decl.Properties.(map[string]any)
			name := m["name"].(ast.Node).Properties.(string)
			pattern, err := lowerPattern(m["pattern"].(string))
			if err != nil {
				return nil, nil, patternError(name, err)
			}
			tokens = append(tokens, parser.TokenDecl{Name: name, Pattern: pattern})

		case "NonTerminalRule":
			m := decl.Properties.(map[string]any)
			name := m["name"].(ast.Node).Properties.(string)
			body := m["body"].(ast.Node)
			rules = append(rules, parser.RuleDecl{Name: name, Factory: lowerExpr(body)})
		}
	}

	return tokens, rules, nil
}

// lowerPattern turns a TerminalRule's raw pattern lexeme — a quoted
// string literal or a /delimited/ regular expression, as produced by
// the TerminalRule meta-rule — into a lexer.Pattern.
func lowerPattern(raw string) (lexer.Pattern, error) {
	if strings.HasPrefix(raw, "/") {
		body := strings.TrimSuffix(strings.TrimPrefix(raw, "/"), "/")
		body = strings.ReplaceAll(body, `\/`, "/")
		return lexer.Regex(body)
	}

	text, err := strconv.Unquote(raw)
	if err != nil {
		return lexer.Pattern{}, err
	}
	return lexer.Literal(text), nil
}

// lowerExpr turns one expression node (Struct, List, Read, Choice,
// Sequence, TerminalIdent, or Empty) into a rule Factory, recursively
// lowering its operands. This is the structural rewrite of §4.6: every
// DSL construct has exactly one lowering.
func lowerExpr(node ast.Node) parser.Factory {
	switch node.Type {
	case "TerminalIdent":
		name := node.Properties.(string)
		return func(r parser.Rules) parser.Rule {
			return r.Rule(name)
		}

	case "Empty":
		return func(r parser.Rules) parser.Rule {
			return parser.Empty()
		}

	case "Sequence":
		items := node.Properties.([]any)
		factories := make([]parser.Factory, len(items))
		for i, it := range items {
			factories[i] = lowerExpr(it.(ast.Node))
		}
		return func(r parser.Rules) parser.Rule {
			rs := make([]parser.Rule, len(factories))
			for i, f := range factories {
				rs[i] = f(r)
			}
			return parser.Sequence(rs...)
		}

	case "Choice":
		items := node.Properties.([]any)
		factories := make([]parser.Factory, len(items))
		for i, it := range items {
			factories[i] = lowerExpr(it.(ast.Node))
		}
		return func(r parser.Rules) parser.Rule {
			rs := make([]parser.Rule, len(factories))
			for i, f := range factories {
				rs[i] = f(r)
			}
			return parser.Choice(rs...)
		}

	case "Read":
		inner := lowerExpr(node.Properties.(ast.Node))
		return func(r parser.Rules) parser.Rule {
			return parser.Text(inner(r))
		}

	case "List":
		m := node.Properties.(map[string]any)
		item := lowerExpr(m["item"].(ast.Node))
		sep := lowerExpr(m["sep"].(ast.Node))
		return func(r parser.Rules) parser.Rule {
			return parser.List(item(r), sep(r), 0)
		}

	case "Struct":
		fieldNodes := node.Properties.([]any)
		type fieldFactory struct {
			key string
			f   parser.Factory
		}
		factories := make([]fieldFactory, len(fieldNodes))
		for i, fn := range fieldNodes {
			fm := fn.(map[string]any)
			key := parser.AnonymousField
			if fm["name"] != nil {
				key = fm["name"].(string)
			}
			factories[i] = fieldFactory{key: key, f: lowerExpr(fm["expr"].(ast.Node))}
		}
		return func(r parser.Rules) parser.Rule {
			fields := make([]parser.FieldDesc, len(factories))
			for i, ff := range factories {
				fields[i] = parser.Field(ff.key, ff.f(r))
			}
			return parser.Struct(fields...)
		}
	}

	panic("langdef: unhandled expression node type: " + string(node.Type))
}
