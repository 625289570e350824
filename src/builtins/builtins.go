// Package builtins implements CSML's side-effecting built-in functions
// (spec §4.3): HTTP, SMTP, Crypto, Base64, Hex, JWT, Time, Random, UUID,
// exists, debug. Each builder mirrors spec.md's chained-method call syntax
// (`HTTP(url).get().send()`) as a small Go struct with one method per
// chain step, returning itself for chaining and a terminal `.send()`/
// `.sign()`/`.decode()`/etc. producing a *primitive.Literal.
package builtins

import (
	"os"

	"go.uber.org/zap"
)

// Logger defaults to a no-op sink, in the teacher's style
// (src/plugin/interfaces.go, src/styles/interfaces.go): set via
// engine.SetLogger once a host configures real logging.
var Logger *zap.Logger = zap.NewNop()

// Registry records every builtin call name (value always true), letting the
// interpreter dispatch `NAME(args...)` call expressions uniformly and the
// linter's check_valid_builtin rule recognize known names without
// duplicating this list.
var Registry = map[string]bool{
	"HTTP": true, "SMTP": true, "Crypto": true, "Base64": true, "Hex": true,
	"JWT": true, "Time": true, "Random": true, "UUID": true,
	"exists": true, "debug": true,
}

// IsBuiltin reports whether name is a recognized built-in call.
func IsBuiltin(name string) bool { return Registry[name] }

// disableSSLVerify reads the DISABLE_SSL_VERIFY env knob (spec §6).
func disableSSLVerify() bool {
	v := os.Getenv("DISABLE_SSL_VERIFY")
	return v == "1" || v == "true" || v == "TRUE"
}
