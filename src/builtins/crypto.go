package builtins

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// CryptoBuilder implements `Crypto(data).hmac(algo, key).digest(fmt)`
// (spec §4.3 table). HMAC-with-named-hash is a direct stdlib composition
// (crypto/hmac + crypto/sha*), so no third-party crypto library is pulled
// in for it — see DESIGN.md for the explicit justification.
type CryptoBuilder struct {
	data []byte
	mac  hash.Hash
}

// Crypto starts a new builder over data.
func Crypto(data string) *CryptoBuilder {
	return &CryptoBuilder{data: []byte(data)}
}

// Hmac selects the HMAC algorithm and key; algo ∈
// md5,sha1,sha256,sha384,sha512.
func (b *CryptoBuilder) Hmac(algo, key string) (*CryptoBuilder, error) {
	newHash, err := hashConstructor(algo)
	if err != nil {
		return b, err
	}
	b.mac = hmac.New(newHash, []byte(key))
	b.mac.Write(b.data)
	return b, nil
}

func hashConstructor(algo string) (func() hash.Hash, error) {
	switch algo {
	case "md5":
		return md5.New, nil
	case "sha1":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("unsupported hmac algorithm %q", algo)
	}
}

// Digest renders the HMAC sum in fmt ∈ hex,base64.
func (b *CryptoBuilder) Digest(format string) (*primitive.Literal, error) {
	if b.mac == nil {
		return primitive.Null(), fmt.Errorf("digest called before hmac")
	}
	sum := b.mac.Sum(nil)
	switch format {
	case "hex":
		return primitive.Str(hex.EncodeToString(sum)), nil
	case "base64":
		return primitive.Str(base64.StdEncoding.EncodeToString(sum)), nil
	default:
		return primitive.Null(), fmt.Errorf("unsupported digest format %q", format)
	}
}
