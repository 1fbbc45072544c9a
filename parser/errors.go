package parser

import (
	"strings"

	"github.com/go-combi/combi"
)

// Error codes raised while assembling a Grammar (authoring mistakes,
// caught at Build/Extend time rather than at parse time).
const (
	DuplicateTokenError = combi.GrammarErrors + iota
	DuplicateRuleError
	NameCollisionError
	UndefinedRuleError
	UnusedRuleError
	NoRootRuleError
	BadRootRuleError
)

func duplicateTokenError(name string) *combi.Error {
	return combi.FormatError(DuplicateTokenError, "duplicate token declaration: %s", name)
}

func duplicateRuleError(name string) *combi.Error {
	return combi.FormatError(DuplicateRuleError, "duplicate rule declaration: %s", name)
}

func nameCollisionError(name string) *combi.Error {
	return combi.FormatError(NameCollisionError, "name declared as both token and rule: %s", name)
}

func undefinedRuleError(names []string) *combi.Error {
	return combi.FormatError(UndefinedRuleError, "reference to undefined rule(s): %s", strings.Join(names, ", "))
}

func unusedRuleError(names []string) *combi.Error {
	return combi.FormatError(UnusedRuleError, "unused rule(s): %s", strings.Join(names, ", "))
}

func noRootRuleError() *combi.Error {
	return combi.FormatError(NoRootRuleError, "grammar has no node rule (uppercase-led name) to serve as its root")
}

func badRootRuleError(name, reason string) *combi.Error {
	return combi.FormatError(BadRootRuleError, "%s: %s", reason, name)
}
