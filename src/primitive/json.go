package primitive

import "encoding/json"

// ToJSON implements spec §4.2's `to_json()`: every value materializes to a
// JSON tree, used both to build outbound Message.content and to serialize
// memories to the Store.
func (l *Literal) ToJSON() interface{} {
	switch l.Primitive.Kind {
	case KindString:
		return l.Primitive.Str
	case KindInt:
		return l.Primitive.IntV
	case KindFloat:
		return l.Primitive.FloatV
	case KindBoolean:
		return l.Primitive.BoolV
	case KindNull:
		return nil
	case KindArray:
		out := make([]interface{}, len(l.Primitive.ArrayV))
		for i, v := range l.Primitive.ArrayV {
			out[i] = v.ToJSON()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(l.Primitive.ObjectKeys))
		for _, k := range l.Primitive.ObjectKeys {
			out[k] = l.Primitive.ObjectV[k].ToJSON()
		}
		return out
	case KindClosure:
		return nil
	default:
		return nil
	}
}

// ToMessageJSON projects the value as outbound Message content: a
// non-generic, non-"object" content_type wraps the raw projection as
// {content_type, content: ...}; otherwise the value projects as its raw
// JSON shape (spec §4.2).
func (l *Literal) ToMessageJSON() interface{} {
	if l.ContentType == "" || l.ContentType == "generic" || l.ContentType == "object" {
		return l.ToJSON()
	}
	return map[string]interface{}{
		"content_type": l.ContentType,
		"content":      l.ToJSON(),
	}
}

// MarshalJSON lets a Literal serialize directly via encoding/json (memory
// persistence, SSE event payloads).
func (l *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.ToMessageJSON())
}

// FromJSON builds a Literal tree from a decoded JSON value (the inverse of
// ToJSON), tagging content_type by kind; used when reading memories back
// from the Store or decoding external JSON via builtins.
func FromJSON(v interface{}) *Literal {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case string:
		return Str(t)
	case []interface{}:
		items := make([]*Literal, len(t))
		for i, e := range t {
			items[i] = FromJSON(e)
		}
		return Array(items)
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		values := make(map[string]*Literal, len(t))
		for k, val := range t {
			keys = append(keys, k)
			values[k] = FromJSON(val)
		}
		return Object(keys, values)
	default:
		return Null()
	}
}

// ParseJSON decodes a JSON-encoded string into a Literal tree.
func ParseJSON(data []byte) (*Literal, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return FromJSON(v), nil
}

// CallMethod dispatches method to the method table of recv's kind, the
// single entry point the evaluator's PathExpr.Call handling uses.
func CallMethod(recv *Literal, method string, args []*Literal) (*Literal, error) {
	switch recv.Primitive.Kind {
	case KindString:
		return CallStringMethod(recv, method, args)
	case KindArray:
		result, newArr, err := CallArrayMethod(recv, method, args)
		if err != nil {
			return nil, err
		}
		recv.Primitive.ArrayV = newArr
		return result, nil
	case KindObject:
		return CallObjectMethod(recv, method, args)
	case KindInt, KindFloat:
		return CallNumericMethod(recv, method, args)
	default:
		return nil, &OpError{Op: method, Message: "kind " + recv.Primitive.Kind.String() + " has no methods"}
	}
}

// HasMethod reports whether method is a known method name for kind —
// used by the linter's check_valid_method rule independent of any
// receiver value.
func HasMethod(kind Kind, method string) bool {
	switch kind {
	case KindString:
		return HasStringMethod(method)
	case KindArray:
		return HasArrayMethod(method)
	case KindObject:
		return HasObjectMethod(method)
	case KindInt, KindFloat:
		return HasNumericMethod(method)
	default:
		return false
	}
}
