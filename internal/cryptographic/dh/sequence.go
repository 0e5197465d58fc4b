package dh

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"lockchat/internal/cryptographic/modmath"
)

// SecretOffset maps runes to integers and back: rune c encodes c-SecretOffset.
const SecretOffset = 'A'

// SequenceLocksmith runs one independent exchange per rune of its secret and
// produces a string session key of the same length.
type SequenceLocksmith struct {
	g, n    int
	secrets []int

	intermediateComputed bool
	keyComputed          bool
}

func NewSequenceLocksmith(g, n int, secret string) (*SequenceLocksmith, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: secret must not be empty", ErrInvalidParameter)
	}
	if err := ValidateParams(g, n); err != nil {
		return nil, err
	}
	return &SequenceLocksmith{g: g, n: n, secrets: decode(secret)}, nil
}

// Len is the number of runes in the secret, and so in every value exchanged.
func (s *SequenceLocksmith) Len() int { return len(s.secrets) }

// MakeIntermediateValue returns g^secret_i mod n for each secret rune,
// encoded back into a string.
func (s *SequenceLocksmith) MakeIntermediateValue() (string, error) {
	if s.intermediateComputed {
		return "", fmt.Errorf("intermediate value: %w", ErrReuse)
	}
	s.intermediateComputed = true

	values := make([]int, len(s.secrets))
	for i, secret := range s.secrets {
		values[i] = modmath.Modpow(s.g, exponent(secret, s.n), s.n)
	}
	return encode(values), nil
}

// MakeKey pairs rune i of peer with rune i of the secret and returns the
// per-position shared values encoded as a string.
func (s *SequenceLocksmith) MakeKey(peer string) (string, error) {
	if s.keyComputed {
		return "", fmt.Errorf("session key: %w", ErrReuse)
	}
	if got := utf8.RuneCountInString(peer); got != len(s.secrets) {
		return "", fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, got, len(s.secrets))
	}
	s.keyComputed = true

	values := decode(peer)
	for i, secret := range s.secrets {
		values[i] = modmath.Modpow(values[i], exponent(secret, s.n), s.n)
	}
	return encode(values), nil
}

func decode(s string) []int {
	out := make([]int, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		out = append(out, int(r-SecretOffset))
	}
	return out
}

func encode(values []int) string {
	var sb strings.Builder
	sb.Grow(len(values))
	for _, v := range values {
		sb.WriteRune(rune(v) + SecretOffset)
	}
	return sb.String()
}
