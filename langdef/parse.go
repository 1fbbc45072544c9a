package langdef

import (
	"github.com/go-combi/combi/parser"
)

// ParseString parses a BNF-style grammar description and lowers it
// into a live *parser.Grammar: the grammarFromDSL route of the engine,
// as opposed to assembling one by hand with parser.Build.
func ParseString(sourceName, source string) (*parser.Grammar, error) {
	root, err := metaGrammar.Parse(sourceName, source)
	if err != nil {
		return nil, err
	}

	tokens, rules, err := lower(*root)
	if err != nil {
		return nil, err
	}

	return parser.Build(tokens, rules, "")
}

// ParseBytes is ParseString for a []byte source.
func ParseBytes(sourceName string, source []byte) (*parser.Grammar, error) {
	return ParseString(sourceName, string(source))
}
