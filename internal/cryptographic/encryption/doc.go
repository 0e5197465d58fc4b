// Package encryption implements the character-range substitution ciphers
// used to protect chat text: a single-shift Caesar cipher and a repeating-key
// Vigenère cipher composed of one Caesar cipher per key rune.
//
// Only runes inside the configured CharRange are transformed. Runes outside
// it either pass through unchanged or fail with *OutOfRangeError, depending
// on the strict flag.
//
// Ciphers are immutable after construction and may be shared between
// goroutines. They offer no real confidentiality.
package encryption
