package builtins

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// Base64Builder implements `Base64(s).encode()/.decode()`.
type Base64Builder struct{ s string }

func Base64(s string) *Base64Builder { return &Base64Builder{s: s} }

func (b *Base64Builder) Encode() *primitive.Literal {
	return primitive.Str(base64.StdEncoding.EncodeToString([]byte(b.s)))
}

func (b *Base64Builder) Decode() (*primitive.Literal, error) {
	data, err := base64.StdEncoding.DecodeString(b.s)
	if err != nil {
		return primitive.Null(), err
	}
	return primitive.Str(string(data)), nil
}

// HexBuilder implements `Hex(s).encode()/.decode()`.
type HexBuilder struct{ s string }

func Hex(s string) *HexBuilder { return &HexBuilder{s: s} }

func (b *HexBuilder) Encode() *primitive.Literal {
	return primitive.Str(hex.EncodeToString([]byte(b.s)))
}

func (b *HexBuilder) Decode() (*primitive.Literal, error) {
	data, err := hex.DecodeString(b.s)
	if err != nil {
		return primitive.Null(), err
	}
	return primitive.Str(string(data)), nil
}
