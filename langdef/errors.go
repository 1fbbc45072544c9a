package langdef

import "github.com/go-combi/combi"

// Error codes raised while lowering a parsed DSL grammar description,
// before handing off to parser.Build (whose own authoring errors, such
// as an undefined or unused rule, are returned unchanged).
const (
	BadPatternError = combi.GrammarErrors + 50 + iota
)

func patternError(name string, cause error) *combi.Error {
	return combi.FormatError(BadPatternError, "token %q: bad pattern: %s", name, cause.Error())
}
