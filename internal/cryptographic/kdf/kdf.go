package kdf

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"
)

const fingerprintSize = 10

// HKDF fills buffer with HKDF-SHA256 output for the given secret, salt and info.
func HKDF(secret, salt, info, buffer []byte) (int, error) {
	h := hkdf.New(sha256.New, secret, salt, info)
	return io.ReadFull(h, buffer)
}

// Fingerprint returns a short hex digest of a session key for users to compare
// out of band. Matching fingerprints on both ends rule out a relay that ran
// two separate exchanges.
func Fingerprint(sessionKey string) (string, error) {
	buf := make([]byte, fingerprintSize)
	if _, err := HKDF([]byte(sessionKey), nil, []byte("lockchat-fingerprint"), buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
