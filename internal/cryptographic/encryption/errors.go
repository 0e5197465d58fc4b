package encryption

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange = errors.New("character out of range")
	ErrEmptyKey   = errors.New("key must not be empty")
)

// OutOfRangeError is returned by strict ciphers for a rune outside their range.
type OutOfRangeError struct {
	Char  rune
	Range CharRange
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%q is out of range: %s", e.Char, e.Range)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}
