package test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/go-combi/combi"
	"github.com/go-combi/combi/ast"
)

func fatalf(t *testing.T, message string, params ...any) {
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	file := thisFile
	line := 0
	for i := 2; file == thisFile; i++ {
		_, file, line, _ = runtime.Caller(i)
	}
	t.Fatalf("%s at %s:%d", message, file, line)
}

func Assert(t *testing.T, cond bool, message string, params ...any) {
	if !cond {
		fatalf(t, message, params...)
	}
}

func Expect(t *testing.T, cond bool, expected, got any) {
	if !cond {
		fatalf(t, "expecting %v, got %v", expected, got)
	}
}

func ExpectBool(t *testing.T, expected, got bool) {
	Expect(t, expected == got, expected, got)
}

func ExpectInt(t *testing.T, expected, got int) {
	Expect(t, expected == got, expected, got)
}

func ExpectErrorCode(t *testing.T, expected int, e error) {
	if e != nil {
		ee, valid := e.(*combi.Error)
		if valid && ee.Code == expected {
			return
		}
	}

	fatalf(t, "expecting error code %d, got %v", expected, e)
}

// ExpectNodeType asserts that n has the given node type, adapted from the
// teacher's parser/test tree validator, trimmed to what this engine's
// flatter Properties-driven Node needs: a type check plus a way to probe
// one field or item at a time, rather than a whole expression grammar.
func ExpectNodeType(t *testing.T, n ast.Node, expected ast.NodeType) {
	if n.Type != expected {
		fatalf(t, "expecting node type %s, got %s", expected, n.Type)
	}
}

// ExpectField asserts that a Struct-built node has a field equal to want.
func ExpectField(t *testing.T, n ast.Node, key string, want any) {
	got, ok := n.Field(key)
	if !ok {
		fatalf(t, "expecting field %q, node has none", key)
	}
	if got != want {
		fatalf(t, "expecting field %q = %v, got %v", key, want, got)
	}
}
