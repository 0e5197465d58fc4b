package dh

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// RandomSecret returns length letters drawn uniformly from A-Z and a-z.
func RandomSecret(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: secret length %d", ErrInvalidParameter, length)
	}

	max := big.NewInt(int64(len(secretAlphabet)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate secret: %w", err)
		}
		out[i] = secretAlphabet[idx.Int64()]
	}
	return string(out), nil
}
