package components

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// Logger defaults to a no-op so importing this package never forces a host
// to wire logging; the engine facade swaps in a real *zap.Logger at
// Configure time (the same pattern as builtins.Logger).
var Logger *zap.Logger = zap.NewNop()

// jsonParam mirrors one entry of a component schema's on-disk/bundle JSON
// form (spec §4.3's "loaded as data" design note, generalized from the
// builtin set's Go-literal schemas to an external representation a host
// can ship without a Go recompile).
type jsonParam struct {
	Name     string      `json:"name"`
	Required bool        `json:"required"`
	Type     string      `json:"type"`
	Default  interface{} `json:"default"`
	AddValue string      `json:"add_value"`
}

type jsonSchema struct {
	Name        string      `json:"name"`
	ContentType string      `json:"content_type"`
	Params      []jsonParam `json:"params"`
}

// FromJSON converts one decoded JSON component schema (either a bot's
// custom_components entry or a COMPONENTS_DIR file) into a ComponentSchema.
func FromJSON(raw map[string]interface{}) (*ComponentSchema, error) {
	blob, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("component schema: %w", err)
	}
	var js jsonSchema
	if err := json.Unmarshal(blob, &js); err != nil {
		return nil, fmt.Errorf("component schema: %w", err)
	}
	if js.Name == "" {
		return nil, fmt.Errorf("component schema missing %q", "name")
	}

	params := make([]ParamSchema, 0, len(js.Params))
	for _, jp := range js.Params {
		p := ParamSchema{
			Name:     jp.Name,
			Required: jp.Required,
			Type:     ParamType(jp.Type),
			AddValue: jp.AddValue,
		}
		if jp.Default != nil {
			p.DefaultValue = []*primitive.Literal{primitive.FromJSON(jp.Default)}
		}
		params = append(params, p)
	}
	return &ComponentSchema{Name: js.Name, ContentType: js.ContentType, Params: params}, nil
}

// LoadDir reads every *.json file in dir as one component schema (spec §6's
// COMPONENTS_DIR knob), skipping — not erroring on — files that fail to
// parse, since one malformed schema shouldn't block every other component
// a host ships.
func LoadDir(dir string) ([]*ComponentSchema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*ComponentSchema
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			Logger.Warn("components: failed reading schema file", zap.Error(err), zap.String("file", e.Name()))
			continue
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			Logger.Warn("components: failed parsing schema file", zap.Error(err), zap.String("file", e.Name()))
			continue
		}
		schema, err := FromJSON(raw)
		if err != nil {
			Logger.Warn("components: invalid schema file", zap.Error(err), zap.String("file", e.Name()))
			continue
		}
		out = append(out, schema)
	}
	return out, nil
}

// MergeCustom registers each raw custom_components entry from a bot bundle
// into reg (spec §3 Bot.custom_components, folded in at ValidateBot time
// per SPEC_FULL.md §4.4). Invalid entries are skipped with a logged
// warning rather than aborting validation of the rest of the bot.
func MergeCustom(reg *Registry, custom map[string]interface{}) {
	for name, raw := range custom {
		m, ok := raw.(map[string]interface{})
		if !ok {
			Logger.Warn("components: custom_components entry is not an object", zap.String("name", name))
			continue
		}
		if _, ok := m["name"]; !ok {
			m["name"] = name
		}
		schema, err := FromJSON(m)
		if err != nil {
			Logger.Warn("components: invalid custom component", zap.Error(err), zap.String("name", name))
			continue
		}
		reg.Register(schema)
	}
}
