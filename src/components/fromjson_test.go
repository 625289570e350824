package components

import (
	"testing"

	"github.com/csml-sh/csml-engine/src/primitive"
)

func TestFromJSON(t *testing.T) {
	raw := map[string]interface{}{
		"name":         "Weather",
		"content_type": "weather",
		"params": []interface{}{
			map[string]interface{}{"name": "city", "required": true, "type": "string"},
			map[string]interface{}{"name": "unit", "required": false, "type": "string", "default": "celsius"},
		},
	}

	s, err := FromJSON(raw)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if s.Name != "Weather" || s.ContentType != "weather" {
		t.Fatalf("unexpected schema: %+v", s)
	}
	if len(s.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(s.Params))
	}
	if s.Params[1].DefaultValue[0].String() != "celsius" {
		t.Fatalf("expected default %q, got %q", "celsius", s.Params[1].DefaultValue[0].String())
	}
}

func TestFromJSONMissingName(t *testing.T) {
	if _, err := FromJSON(map[string]interface{}{"content_type": "x"}); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestMergeCustom(t *testing.T) {
	reg := NewRegistry()
	custom := map[string]interface{}{
		"Weather": map[string]interface{}{
			"content_type": "weather",
			"params": []interface{}{
				map[string]interface{}{"name": "city", "required": true, "type": "string"},
			},
		},
		"Broken": "not an object",
	}
	MergeCustom(reg, custom)

	if _, ok := reg.Lookup("Weather"); !ok {
		t.Fatal("expected Weather to be registered")
	}
	if _, ok := reg.Lookup("Broken"); ok {
		t.Fatal("expected Broken to be skipped, not registered")
	}
	// Builtins survive merging custom components alongside them.
	if _, ok := reg.Lookup("Text"); !ok {
		t.Fatal("expected builtin Text schema to still be registered")
	}
}

func TestBuildWithJSONLoadedSchema(t *testing.T) {
	s, err := FromJSON(map[string]interface{}{
		"name":         "Weather",
		"content_type": "weather",
		"params": []interface{}{
			map[string]interface{}{"name": "city", "required": true, "type": "string"},
			map[string]interface{}{"name": "unit", "required": false, "type": "string", "default": "celsius"},
		},
	})
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	lit, err := s.Build(map[string]*primitive.Literal{"city": str("Paris")})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if lit.ContentType != "weather" {
		t.Fatalf("expected content_type %q, got %q", "weather", lit.ContentType)
	}
}
