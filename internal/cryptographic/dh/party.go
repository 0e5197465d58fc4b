package dh

import (
	"fmt"

	"lockchat/internal/cryptographic/modmath"
)

// Party is one side of a key agreement producing values of type T.
type Party[T any] interface {
	MakeIntermediateValue() (T, error)
	MakeKey(peer T) (T, error)
}

var (
	_ Party[int]    = (*Locksmith)(nil)
	_ Party[string] = (*SequenceLocksmith)(nil)
)

// MaxModulus is the largest n a SequenceLocksmith accepts. Every value below
// n is encoded as a rune at SecretOffset and up, and must stay clear of the
// UTF-16 surrogate block, which cannot be encoded and would be replaced.
const MaxModulus = 0xD800 - SecretOffset

// ValidateParams reports whether (g, n) can drive a SequenceLocksmith. The
// modulus bound is checked before the O(n) primitive-root enumeration.
func ValidateParams(g, n int) error {
	if n > MaxModulus {
		return fmt.Errorf("%w: modulus %d exceeds %d", ErrInvalidParameter, n, MaxModulus)
	}
	return validateParams(g, n)
}

func validateParams(g, n int) error {
	if !modmath.IsPrimitiveRoot(g, n) {
		return fmt.Errorf("%w: %d is not a primitive root of %d", ErrInvalidParameter, g, n)
	}
	return nil
}

// exponent maps a secret onto a usable exponent. Negative secrets are
// reduced modulo n-1, the order of the group g generates; non-negative
// secrets are used as is.
func exponent(secret, n int) int {
	if secret >= 0 {
		return secret
	}
	return modmath.Mod(secret, n-1)
}
