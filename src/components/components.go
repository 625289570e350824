// Package components implements CSML's native outbound message
// constructors (spec §4.3): schema-driven builders for Text, Image, Audio,
// Video, File, Url, Button, Card, Carousel, Question, Typing, and Wait,
// plus whatever a bot bundle supplies as custom_components with the same
// schema shape.
package components

import (
	"fmt"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// ParamType names the accepted value kind of a component parameter. Loose
// ("any") is used for fields components forward verbatim.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeArray  ParamType = "array"
	TypeObject ParamType = "object"
	TypeAny    ParamType = "any"
)

// ParamSchema is one parameter of a ComponentSchema (spec §4.3), loaded as
// data rather than hard-coded per component per spec §9's design note.
type ParamSchema struct {
	Name         string
	Required     bool
	Type         ParamType
	DefaultValue []*primitive.Literal // expression chunks; see resolveDefault
	AddValue     string               // non-"" names the array field this param accumulates into
}

// ComponentSchema describes one constructible component.
type ComponentSchema struct {
	Name       string
	Params     []ParamSchema
	ContentType string
}

// Schema is an alias for ComponentSchema so host-facing call sites (the
// engine facade's LoadComponents) can spell the type the way the bot
// bundle's own vocabulary does ("component schema") without a second
// struct definition to keep in sync.
type Schema = ComponentSchema

// Registry holds the builtin component set plus any merged-in custom or
// on-disk schemas (spec §4.3's "merge point" — also where ValidateBot
// folds in a bot's custom_components).
type Registry struct {
	schemas map[string]*ComponentSchema
}

// NewRegistry returns a Registry pre-populated with the canonical builtin
// component set.
func NewRegistry() *Registry {
	r := &Registry{schemas: map[string]*ComponentSchema{}}
	for _, s := range builtinSchemas() {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a component schema — used both for the
// builtin set and for a bot's custom_components.
func (r *Registry) Register(s *ComponentSchema) {
	r.schemas[s.Name] = s
}

// Lookup returns the schema for name, if any.
func (r *Registry) Lookup(name string) (*ComponentSchema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns every registered component name, in no particular order
// (engine.LoadComponents uses it to list the registry).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		out = append(out, n)
	}
	return out
}

// BuildError is raised when required-parameter validation fails; the
// evaluator turns it into an "error" content Message rather than aborting
// (spec §4.3: "emit an error message and continue").
type BuildError struct {
	Component string
	Param     string
	Message   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("component %s: %s", e.Component, e.Message)
}

// Build constructs the Literal for one component invocation given its
// already-evaluated named arguments. Missing required parameters produce a
// *BuildError; missing optional parameters fall back to DefaultValue,
// where a {$_get: "name"} default takes the value of a parameter bound
// earlier in schema order (spec §4.3) — see resolveDefault.
func (s *ComponentSchema) Build(bound map[string]*primitive.Literal) (*primitive.Literal, error) {
	resolved := map[string]*primitive.Literal{}
	accum := map[string][]*primitive.Literal{}

	for _, p := range s.Params {
		v, ok := bound[p.Name]
		if !ok {
			if p.Required {
				return nil, &BuildError{Component: s.Name, Param: p.Name, Message: "missing required parameter"}
			}
			v = resolveDefault(p, resolved)
		}
		resolved[p.Name] = v
		if p.AddValue != "" {
			accum[p.AddValue] = append(accum[p.AddValue], v)
		}
	}

	keys := make([]string, 0, len(resolved)+len(accum))
	values := make(map[string]*primitive.Literal, len(resolved)+len(accum))
	for _, p := range s.Params {
		if p.AddValue != "" {
			continue
		}
		keys = append(keys, p.Name)
		values[p.Name] = resolved[p.Name]
	}
	for field, items := range accum {
		keys = append(keys, field)
		values[field] = primitive.Array(items)
	}

	lit := primitive.Object(keys, values)
	return lit.WithContentType(s.ContentType), nil
}

// resolveDefault evaluates a parameter's default_value, substituting
// {$_get: "name"} references to other already-bound parameters. A default
// is either a literal value or a direct {$_get: ...} reference (only the
// first DefaultValue entry is used), so this is a small direct lookup
// rather than a general expression evaluator.
func resolveDefault(p ParamSchema, resolved map[string]*primitive.Literal) *primitive.Literal {
	if len(p.DefaultValue) == 0 {
		return primitive.Null()
	}
	d := p.DefaultValue[0]
	if d.Primitive.Kind == primitive.KindObject && len(d.Primitive.ObjectKeys) == 1 {
		if ref, ok := d.Primitive.ObjectV["$_get"]; ok && ref.Primitive.Kind == primitive.KindString {
			return Get(resolved, ref.Primitive.Str)
		}
	}
	return d
}

// Get resolves a {$_get: "name"} style default-value reference against
// already-bound parameters.
func Get(resolved map[string]*primitive.Literal, name string) *primitive.Literal {
	if v, ok := resolved[name]; ok {
		return v
	}
	return primitive.Null()
}
