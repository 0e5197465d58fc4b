// Package modmath holds the small-integer number theory used by the key
// exchange: modular exponentiation and an exhaustive primitive-root check.
//
// Everything here works on machine ints. None of it is suitable for
// cryptographically sized moduli.
package modmath
