package components

import (
	"testing"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// buildPositional mimics interpreter/path.go's buildComponent: args bind
// to schema.Params by index alone, with no keyword matching available.
func buildPositional(t *testing.T, name string, args ...*primitive.Literal) *primitive.Literal {
	t.Helper()
	reg := NewRegistry()
	schema, ok := reg.Lookup(name)
	if !ok {
		t.Fatalf("no builtin schema named %q", name)
	}
	bound := map[string]*primitive.Literal{}
	for i, p := range schema.Params {
		if i < len(args) {
			bound[p.Name] = args[i]
		}
	}
	lit, err := schema.Build(bound)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return lit
}

// Question("How?", [Button("A"), Button("B")]) — spec §8 scenario 3's
// canonical call, with the kwarg label stripped since the grammar has no
// kwarg production and the call is positional at the parser/interpreter
// layer. Title must land in "title", not "buttons".
func TestQuestionPositionalOrderMatchesSpecExample(t *testing.T) {
	buttonA := buildPositional(t, "Button", str("A"))
	buttonB := buildPositional(t, "Button", str("B"))
	buttons := primitive.Array([]*primitive.Literal{buttonA, buttonB})

	lit := buildPositional(t, "Question", str("How?"), buttons)

	obj := lit.Primitive.ObjectV
	if obj["title"] == nil || obj["title"].String() != "How?" {
		t.Fatalf(`expected title "How?", got %+v`, obj["title"])
	}
	if obj["buttons"] == nil || obj["buttons"].Primitive.Kind != primitive.KindArray {
		t.Fatalf("expected buttons to be an array, got %+v", obj["buttons"])
	}
	if len(obj["buttons"].Primitive.ArrayV) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(obj["buttons"].Primitive.ArrayV))
	}
}
