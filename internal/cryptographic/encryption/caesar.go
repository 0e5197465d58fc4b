package encryption

import (
	"strings"

	"lockchat/internal/cryptographic/modmath"
)

// Caesar shifts every in-range rune by a fixed key, wrapping around the range.
type Caesar struct {
	charRange CharRange
	key       int
	strict    bool
}

// NewCaesar returns a Caesar cipher over r. The key may be any integer,
// including negative values and values larger than the range span.
func NewCaesar(r CharRange, key int, strict bool) *Caesar {
	return &Caesar{
		charRange: r,
		key:       key,
		strict:    strict,
	}
}

func (c *Caesar) Key() int { return c.key }

// Encrypt shifts in by the key, or by its negation when reverse is set.
func (c *Caesar) Encrypt(in string, reverse bool) (string, error) {
	var sb strings.Builder
	sb.Grow(len(in))
	for _, r := range in {
		out, err := c.shift(r, reverse)
		if err != nil {
			return "", err
		}
		sb.WriteRune(out)
	}
	return sb.String(), nil
}

func (c *Caesar) Decrypt(in string) (string, error) {
	return c.Encrypt(in, true)
}

func (c *Caesar) shift(r rune, reverse bool) (rune, error) {
	if !c.charRange.Contains(r) {
		if c.strict {
			return 0, &OutOfRangeError{Char: r, Range: c.charRange}
		}
		return r, nil
	}

	key := c.key
	if reverse {
		key = -key
	}
	span := c.charRange.Span()
	// reduce the key first so the sum cannot overflow for extreme keys
	shifted := modmath.Mod(int(r-c.charRange.Low)+modmath.Mod(key, span), span)
	return c.charRange.Low + rune(shifted), nil
}
