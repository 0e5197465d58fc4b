package encryption

import (
	"errors"
	"fmt"
)

var ErrInvalidRange = errors.New("invalid character range")

// CharRange is an inclusive range of code points.
type CharRange struct {
	Low  rune
	High rune
}

// AppRange covers the ASCII letters (plus the six symbols between them) and is
// the range chat sessions are encrypted over.
var AppRange = CharRange{Low: 65, High: 122}

func NewCharRange(low, high rune) (CharRange, error) {
	if low > high {
		return CharRange{}, fmt.Errorf("%w: low %d > high %d", ErrInvalidRange, low, high)
	}
	return CharRange{Low: low, High: high}, nil
}

// Contains reports whether r lies within the range, both ends included.
func (cr CharRange) Contains(r rune) bool {
	return r >= cr.Low && r <= cr.High
}

// Span is the number of code points in the range.
func (cr CharRange) Span() int {
	return int(cr.High-cr.Low) + 1
}

func (cr CharRange) String() string {
	return fmt.Sprintf("(%d, %d)", cr.Low, cr.High)
}
