// Package langdef is the self-hosted DSL frontend: a fixed grammar,
// expressed directly in the parser package's combinator algebra (not
// derived by parsing itself, to avoid circularity), that reads a
// BNF-style grammar description and lowers it into a live
// *parser.Grammar.
package langdef

import (
	"github.com/go-combi/combi/lexer"
	"github.com/go-combi/combi/parser"
)

var metaTokens = []parser.TokenDecl{
	{Name: "ASSIGN", Pattern: lexer.Literal("::=")},
	{Name: "ARROW", Pattern: lexer.Literal("<-")},
	{Name: "LANGLE", Pattern: lexer.Literal("<")},
	{Name: "RANGLE", Pattern: lexer.Literal(">")},
	{Name: "LBRACE", Pattern: lexer.Literal("{")},
	{Name: "RBRACE", Pattern: lexer.Literal("}")},
	{Name: "LBRACKET", Pattern: lexer.Literal("[")},
	{Name: "RBRACKET", Pattern: lexer.Literal("]")},
	{Name: "COMMA", Pattern: lexer.Literal(",")},
	{Name: "COLON", Pattern: lexer.Literal(":")},
	{Name: "PIPE", Pattern: lexer.Literal("|")},
	{Name: "EMPTYLIT", Pattern: lexer.Literal(`""`)},
	{Name: "STRING", Pattern: mustRegex(`"(?:[^"\\]|\\.)*"`)},
	{Name: "REGEXP", Pattern: mustRegex(`/(?:[^/\\]|\\.)*/`)},
	{Name: "IDENT", Pattern: mustRegex(`[A-Za-z_][A-Za-z0-9_]*`)},
	{Name: "NEWLINE", Pattern: mustRegex(`\r?\n`)},
	{Name: "WS", Pattern: mustRegex(`[ \t]+`)},
}

func mustRegex(source string) lexer.Pattern {
	p, err := lexer.Regex(source)
	if err != nil {
		panic("langdef: bad builtin pattern " + source + ": " + err.Error())
	}
	return p
}

// second keeps element 1 of a []any: for the two-element
// Sequence(delimiter, inner) shape used throughout, the inner value,
// discarding the matched leading delimiter.
func second(v any) any {
	return v.([]any)[1]
}

func last(v any) any {
	parts := v.([]any)
	return parts[len(parts)-1]
}

// flattenSeq turns [head, firstRest, []any{moreRest...}] into a flat
// []any{head, firstRest, moreRest...}, the shape produced by a "one
// required, more optional" Sequence as used by Sequence and Choice
// below.
func flattenSeq(v any) any {
	parts := v.([]any)
	rest := parts[2].([]any)
	out := make([]any, 0, 2+len(rest))
	out = append(out, parts[0], parts[1])
	out = append(out, rest...)
	return out
}

var metaRules = []parser.RuleDecl{
	{Name: "TerminalIdent", Factory: func(r parser.Rules) parser.Rule {
		return parser.Text(r.Rule("IDENT"))
	}},

	{Name: "NonTerminalIdent", Factory: func(r parser.Rules) parser.Rule {
		return parser.Map(
			parser.Sequence(r.Rule("LANGLE"), parser.Text(r.Rule("IDENT")), r.Rule("RANGLE")),
			func(v any) any { return v.([]any)[1] },
		)
	}},

	{Name: "Empty", Factory: func(r parser.Rules) parser.Rule {
		return parser.Map(r.Rule("EMPTYLIT"), func(any) any { return nil })
	}},

	{Name: "atomic", Factory: func(r parser.Rules) parser.Rule {
		return parser.Choice(r.Rule("TerminalIdent"), r.Rule("Empty"))
	}},

	{Name: "Sequence", Factory: func(r parser.Rules) parser.Rule {
		atomic := r.Rule("atomic")
		pairAtomic := parser.Map(parser.Sequence(r.Rule("WS"), atomic), second)
		return parser.Map(
			parser.Sequence(atomic, pairAtomic, parser.ZeroOrMore(pairAtomic)),
			flattenSeq,
		)
	}},

	{Name: "branch", Factory: func(r parser.Rules) parser.Rule {
		return parser.Choice(r.Rule("Sequence"), r.Rule("atomic"))
	}},

	{Name: "Choice", Factory: func(r parser.Rules) parser.Rule {
		branch := r.Rule("branch")
		pipeBranch := parser.Map(parser.Sequence(r.Rule("PIPE"), branch), second)
		return parser.Map(
			parser.Sequence(branch, pipeBranch, parser.ZeroOrMore(pipeBranch)),
			flattenSeq,
		)
	}},

	{Name: "expression", Factory: func(r parser.Rules) parser.Rule {
		return parser.Choice(
			r.Rule("Struct"),
			r.Rule("List"),
			r.Rule("Read"),
			r.Rule("Choice"),
			r.Rule("Sequence"),
			r.Rule("atomic"),
		)
	}},

	{Name: "field", Factory: func(r parser.Rules) parser.Rule {
		name := parser.Optional(parser.Text(r.Rule("IDENT")))
		return parser.Map(
			parser.Sequence(name, r.Rule("COLON"), r.Rule("expression")),
			func(v any) any {
				parts := v.([]any)
				return map[string]any{"name": parts[0], "expr": parts[2]}
			},
		)
	}},

	{Name: "statementSep", Factory: func(r parser.Rules) parser.Rule {
		return parser.Map(
			parser.Sequence(r.Rule("NEWLINE"), parser.ZeroOrMore(parser.Choice(r.Rule("WS"), r.Rule("NEWLINE")))),
			func(any) any { return nil },
		)
	}},

	{Name: "Struct", Factory: func(r parser.Rules) parser.Rule {
		sep := r.Rule("statementSep")
		field := r.Rule("field")
		pairField := parser.Map(parser.Sequence(r.Rule("COMMA"), sep, field), last)
		fields := parser.Map(
			parser.Sequence(field, parser.ZeroOrMore(pairField)),
			func(v any) any {
				parts := v.([]any)
				return append([]any{parts[0]}, parts[1].([]any)...)
			},
		)
		return parser.Map(
			parser.Sequence(r.Rule("LBRACE"), sep, fields, sep, r.Rule("RBRACE")),
			func(v any) any { return v.([]any)[2] },
		)
	}},

	{Name: "List", Factory: func(r parser.Rules) parser.Rule {
		return parser.Map(
			parser.Sequence(r.Rule("LBRACKET"), r.Rule("expression"), r.Rule("COMMA"), r.Rule("expression"), r.Rule("RBRACKET")),
			func(v any) any {
				parts := v.([]any)
				return map[string]any{"item": parts[1], "sep": parts[3]}
			},
		)
	}},

	{Name: "Read", Factory: func(r parser.Rules) parser.Rule {
		inner := parser.Choice(r.Rule("Choice"), r.Rule("Sequence"), r.Rule("atomic"))
		return parser.Map(parser.Sequence(r.Rule("ARROW"), inner), second)
	}},

	{Name: "TerminalRule", Factory: func(r parser.Rules) parser.Rule {
		pattern := parser.Choice(parser.Text(r.Rule("STRING")), parser.Text(r.Rule("REGEXP")))
		return parser.Map(
			parser.Sequence(r.Rule("TerminalIdent"), r.Rule("ASSIGN"), pattern),
			func(v any) any {
				parts := v.([]any)
				return map[string]any{"name": parts[0], "pattern": parts[2]}
			},
		)
	}},

	{Name: "NonTerminalRule", Factory: func(r parser.Rules) parser.Rule {
		return parser.Map(
			parser.Sequence(r.Rule("NonTerminalIdent"), r.Rule("ASSIGN"), r.Rule("expression")),
			func(v any) any {
				parts := v.([]any)
				return map[string]any{"name": parts[0], "body": parts[2]}
			},
		)
	}},

	{Name: "rule", Factory: func(r parser.Rules) parser.Rule {
		return parser.Choice(r.Rule("TerminalRule"), r.Rule("NonTerminalRule"))
	}},

	{Name: "Program", Factory: func(r parser.Rules) parser.Rule {
		rule := r.Rule("rule")
		sep := r.Rule("statementSep")
		pairRule := parser.Map(parser.Sequence(sep, rule), second)
		trailing := parser.ZeroOrMore(parser.Choice(r.Rule("WS"), r.Rule("NEWLINE")))
		return parser.Map(
			parser.Sequence(rule, parser.ZeroOrMore(pairRule), trailing),
			func(v any) any {
				parts := v.([]any)
				return append([]any{parts[0]}, parts[1].([]any)...)
			},
		)
	}},
}

var metaGrammar = func() *parser.Grammar {
	g, err := parser.Build(metaTokens, metaRules, "Program")
	if err != nil {
		panic("langdef: builtin meta-grammar failed to build: " + err.Error())
	}
	return g
}()
