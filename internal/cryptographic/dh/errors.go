package dh

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidParameter = errors.New("invalid key exchange parameter")
	ErrMissingSecret    = fmt.Errorf("%w: secret must be supplied", ErrInvalidParameter)
	ErrReuse            = errors.New("value already computed for this party")
	ErrLengthMismatch   = errors.New("peer contribution length mismatch")
)
