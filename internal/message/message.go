// Package message converts text to and from the code point sequence
// that serves as the search payload.
package message

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrCodePoint = errors.New("invalid code point")

// Sequence maps each character of text to its code point, in order.
func Sequence(text string) []int {
	seq := make([]int, 0, len(text))
	for _, r := range text {
		seq = append(seq, int(r))
	}
	return seq
}

// Text is the inverse of Sequence. It fails if any value is not a valid
// code point.
func Text(seq []int) (string, error) {
	s := &strings.Builder{}
	s.Grow(len(seq))
	for i, cp := range seq {
		if cp < 0 || cp > utf8.MaxRune || !utf8.ValidRune(rune(cp)) {
			return "", fmt.Errorf("value %d at position %d: %w", cp, i, ErrCodePoint)
		}
		s.WriteRune(rune(cp))
	}
	return s.String(), nil
}
