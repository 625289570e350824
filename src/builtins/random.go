package builtins

import (
	"math/rand"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// Random implements `Random()` → float64 in [0,1) (spec §4.3 table).
// Excluded from the determinism invariant by design, same as Time/UUID.
func Random() *primitive.Literal {
	return primitive.Float(rand.Float64())
}
