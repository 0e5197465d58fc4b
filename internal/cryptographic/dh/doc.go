// Package dh implements toy finite-field Diffie–Hellman over small prime
// moduli.
//
// # Parties
//
// Locksmith agrees on a single integer. SequenceLocksmith agrees on a string:
// every rune of its secret is an independent exponent, and the resulting
// session key is a string ready to seed an encryption.Vigenere.
//
// Both satisfy Party and expose the same two one-shot operations:
//
//  1. MakeIntermediateValue computes the public contribution g^secret mod n.
//  2. MakeKey raises the peer's contribution to our secret.
//
// Each may succeed once per instance. A second call fails with ErrReuse so
// the same secret cannot quietly produce the same session key twice; start a
// new party with a fresh secret instead. A failed call leaves the instance
// unchanged.
//
// # Parameters
//
// g must be a primitive root of n. Constructors check this with
// modmath.IsPrimitiveRoot and fail with ErrInvalidParameter otherwise.
//
// # Security notes
//
// The exchange is unauthenticated and trivially open to a man in the middle.
// Moduli are small enough to brute force. Parties are not safe for
// concurrent use.
package dh
