package dh

import (
	"fmt"

	"lockchat/internal/cryptographic/modmath"
)

// Locksmith holds one party's integer secret for a single exchange.
type Locksmith struct {
	g, n   int
	secret int

	intermediateComputed bool
	keyComputed          bool
}

// NewLocksmith validates (g, n) and returns a party holding secret. A nil
// secret fails with ErrMissingSecret; there is no implicit generation.
func NewLocksmith(g, n int, secret *int) (*Locksmith, error) {
	if secret == nil {
		return nil, ErrMissingSecret
	}
	if err := validateParams(g, n); err != nil {
		return nil, err
	}
	return &Locksmith{g: g, n: n, secret: *secret}, nil
}

// MakeIntermediateValue returns g^secret mod n, the value to send to the peer.
func (l *Locksmith) MakeIntermediateValue() (int, error) {
	if l.intermediateComputed {
		return 0, fmt.Errorf("intermediate value: %w", ErrReuse)
	}
	l.intermediateComputed = true
	return modmath.Modpow(l.g, exponent(l.secret, l.n), l.n), nil
}

// MakeKey returns peer^secret mod n, the shared session value.
func (l *Locksmith) MakeKey(peer int) (int, error) {
	if l.keyComputed {
		return 0, fmt.Errorf("session key: %w", ErrReuse)
	}
	l.keyComputed = true
	return modmath.Modpow(peer, exponent(l.secret, l.n), l.n), nil
}
