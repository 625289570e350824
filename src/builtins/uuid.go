package builtins

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// UUID implements `UUID(version?)`; version ∈ {"v1","v4"}, default "v4"
// (spec §4.3 table), via google/uuid — the same package the teacher uses
// for its request/trace ids in src/modules/server/ail.go.
func UUID(version string) (*primitive.Literal, error) {
	switch version {
	case "", "v4":
		return primitive.Str(uuid.New().String()), nil
	case "v1":
		id, err := uuid.NewUUID()
		if err != nil {
			return primitive.Null(), err
		}
		return primitive.Str(id.String()), nil
	default:
		return primitive.Null(), fmt.Errorf("unsupported UUID version %q", version)
	}
}
