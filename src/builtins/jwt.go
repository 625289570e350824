package builtins

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"

	"github.com/go-jose/go-jose/v4"

	"github.com/csml-sh/csml-engine/src/primitive"
)

// JWTBuilder implements `JWT(payload).sign(algo, secret, headers?)` /
// `JWT(token).decode(key, validation?)` (spec §4.3 table) over
// go-jose/go-jose/v4 — the teacher's auth stack pulls it in transitively
// (coreos/go-oidc); promoted to a direct dependency here because this
// built-in needs exactly its JWS sign+verify surface across the
// HS/RS/ES/PS families spec §6 enumerates.
type JWTBuilder struct {
	payload *primitive.Literal // sign mode: claims object
	token   string             // decode mode: compact JWS string
}

// JWT starts a builder: pass the claims Literal to sign, or the compact
// token string (wrapped in a Literal) to decode — the mode is determined
// by which terminal method is called.
func JWT(payload *primitive.Literal) *JWTBuilder {
	b := &JWTBuilder{payload: payload}
	if payload != nil && payload.Primitive.Kind == primitive.KindString {
		b.token = payload.Primitive.Str
	}
	return b
}

var algByName = map[string]jose.SignatureAlgorithm{
	"HS256": jose.HS256, "HS384": jose.HS384, "HS512": jose.HS512,
	"RS256": jose.RS256, "RS384": jose.RS384, "RS512": jose.RS512,
	"ES256": jose.ES256, "ES384": jose.ES384, "ES512": jose.ES512,
	"PS256": jose.PS256, "PS384": jose.PS384, "PS512": jose.PS512,
}

// Sign produces a compact JWS over the claims object using algo and
// secret. headers (may be nil) are merged into the protected header.
func (b *JWTBuilder) Sign(algo, secret string, headers map[string]interface{}) (*primitive.Literal, error) {
	alg, ok := algByName[algo]
	if !ok {
		return primitive.Null(), fmt.Errorf("unsupported jwt algorithm %q", algo)
	}
	key, err := signingKey(alg, secret)
	if err != nil {
		return primitive.Null(), err
	}

	opts := (&jose.SignerOptions{}).WithType("JWT")
	for k, v := range headers {
		opts = opts.WithHeader(jose.HeaderKey(k), v)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: alg, Key: key}, opts)
	if err != nil {
		return primitive.Null(), err
	}

	payloadJSON, err := json.Marshal(b.payload.ToJSON())
	if err != nil {
		return primitive.Null(), err
	}

	jws, err := signer.Sign(payloadJSON)
	if err != nil {
		return primitive.Null(), err
	}
	serialized, err := jws.CompactSerialize()
	if err != nil {
		return primitive.Null(), err
	}
	return primitive.Str(serialized), nil
}

// Decode verifies and parses a compact JWS with key, returning its claims
// as an Object literal. validation is currently unused beyond presence
// (claim-level exp/nbf/iss checks are left to the bot's own flow logic,
// as spec.md does not enumerate a specific validation rule set beyond
// "validation fields enumerated in §6").
func (b *JWTBuilder) Decode(key string, validation map[string]interface{}) (*primitive.Literal, error) {
	jws, err := jose.ParseSigned(b.token, allAlgorithms())
	if err != nil {
		return primitive.Null(), err
	}
	if len(jws.Signatures) == 0 {
		return primitive.Null(), fmt.Errorf("jwt: no signatures present")
	}
	alg := jose.SignatureAlgorithm(jws.Signatures[0].Header.Algorithm)
	verifyKey, err := verificationKey(alg, key)
	if err != nil {
		return primitive.Null(), err
	}
	payload, err := jws.Verify(verifyKey)
	if err != nil {
		return primitive.Null(), err
	}
	return primitive.ParseJSON(payload)
}

func allAlgorithms() []jose.SignatureAlgorithm {
	out := make([]jose.SignatureAlgorithm, 0, len(algByName))
	for _, a := range algByName {
		out = append(out, a)
	}
	return out
}

func isHMAC(alg jose.SignatureAlgorithm) bool {
	switch alg {
	case jose.HS256, jose.HS384, jose.HS512:
		return true
	}
	return false
}

func signingKey(alg jose.SignatureAlgorithm, secret string) (interface{}, error) {
	if isHMAC(alg) {
		return []byte(secret), nil
	}
	key, err := parsePrivateKey(secret)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func verificationKey(alg jose.SignatureAlgorithm, secret string) (interface{}, error) {
	if isHMAC(alg) {
		return []byte(secret), nil
	}
	return parsePublicKey(secret)
}

func parsePrivateKey(pemStr string) (crypto.Signer, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("jwt: secret is not a PEM-encoded private key")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if signer, ok := key.(crypto.Signer); ok {
			return signer, nil
		}
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("jwt: unsupported private key encoding")
}

func parsePublicKey(pemStr string) (interface{}, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("jwt: key is not a PEM-encoded public key")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	switch key.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey:
		return key, nil
	default:
		return nil, fmt.Errorf("jwt: unsupported public key type")
	}
}
