package modmath

import "math/bits"

// Modpow returns base^exponent mod modulus using square-and-multiply,
// reducing after every step so no intermediate exceeds modulus².
//
// A negative base is normalized into [0, modulus). Modpow panics if modulus
// is not positive or exponent is negative.
func Modpow(base, exponent, modulus int) int {
	if modulus <= 0 {
		panic("modmath: modulus must be positive")
	}
	if exponent < 0 {
		panic("modmath: negative exponent")
	}
	if modulus == 1 {
		return 0
	}

	m := uint64(modulus)
	b := uint64(Mod(base, modulus))
	e := uint64(exponent)
	result := uint64(1)
	for e > 0 {
		if e&1 == 1 {
			result = mulmod(result, b, m)
		}
		b = mulmod(b, b, m)
		e >>= 1
	}
	return int(result)
}

// IsPrimitiveRoot reports whether g generates every nonzero residue modulo n.
//
// It enumerates g^i mod n for i = 1..n-1 and stops as soon as n-1 distinct
// residues have been seen. The cost is O(n) time and memory, so it is only
// meant for small moduli (tens to low hundreds).
func IsPrimitiveRoot(g, n int) bool {
	if n < 2 {
		return false
	}

	seen := make(map[int]struct{}, n-1)
	m := uint64(n)
	base := uint64(Mod(g, n))
	power := uint64(1)
	for i := 1; i < n; i++ {
		power = mulmod(power, base, m)
		seen[int(power)] = struct{}{}
		if len(seen) == n-1 {
			return true
		}
	}
	return false
}

// Mod returns a mod m normalized into [0, m) for any sign of a.
func Mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func mulmod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}
