package encryption

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Vigenere applies one Caesar cipher per key rune, cycling through them by
// rune position in the input.
type Vigenere struct {
	charRange CharRange
	key       string
	strict    bool
	ciphers   []*Caesar
}

// NewVigenere builds the per-rune Caesar ciphers for key. Each cipher is keyed
// by the code point of its key rune.
func NewVigenere(r CharRange, key string, strict bool) (*Vigenere, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	ciphers := make([]*Caesar, 0, utf8.RuneCountInString(key))
	for _, k := range key {
		ciphers = append(ciphers, NewCaesar(r, int(k), strict))
	}

	return &Vigenere{
		charRange: r,
		key:       key,
		strict:    strict,
		ciphers:   ciphers,
	}, nil
}

func (v *Vigenere) Key() string { return v.key }

func (v *Vigenere) Encrypt(in string, reverse bool) (string, error) {
	var sb strings.Builder
	sb.Grow(len(in))
	i := 0
	for _, r := range in {
		out, err := v.ciphers[i%len(v.ciphers)].shift(r, reverse)
		if err != nil {
			return "", fmt.Errorf("position %d: %w", i, err)
		}
		sb.WriteRune(out)
		i++
	}
	return sb.String(), nil
}

func (v *Vigenere) Decrypt(in string) (string, error) {
	return v.Encrypt(in, true)
}
