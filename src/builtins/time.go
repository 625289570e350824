package builtins

import (
	"time"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// Time implements `Time()` → `{milliseconds: i64}` (spec §4.3 table).
// Excluded from the determinism invariant (spec §8) by design: callers
// that need reproducible runs must not call it inside an asserted-
// deterministic flow.
func Time() *primitive.Literal {
	ms := time.Now().UnixMilli()
	return primitive.Object([]string{"milliseconds"}, map[string]*primitive.Literal{
		"milliseconds": primitive.Int(ms),
	})
}
