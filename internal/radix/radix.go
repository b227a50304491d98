// Package radix converts non-negative integers to and from positional
// digit sequences and their textual form in bases 2 through 65536.
package radix

import (
	"errors"
	"fmt"
)

const (
	MinBase = 2
	MaxBase = 65536

	// Bases up to this render as alphanumeric characters, anything
	// above renders one code point per digit.
	maxAlnumBase = 36
)

var (
	ErrBase  = fmt.Errorf("base must be between %d and %d", MinBase, MaxBase)
	ErrDigit = errors.New("digit out of range")
)

func checkBase(base int) error {
	if base < MinBase || base > MaxBase {
		return fmt.Errorf("base %d: %w", base, ErrBase)
	}
	return nil
}

// Digits converts value to its digit values in the given base, most
// significant first. Zero yields a single zero digit.
func Digits(value uint64, base int) ([]int, error) {
	if err := checkBase(base); err != nil {
		return nil, err
	}

	if value == 0 {
		return []int{0}, nil
	}

	b := uint64(base)
	var digits []int
	for value > 0 {
		digits = append(digits, int(value%b))
		value /= b
	}

	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return digits, nil
}

// Value is the inverse of Digits.
func Value(digits []int, base int) (uint64, error) {
	if err := checkBase(base); err != nil {
		return 0, err
	}

	var value uint64
	for _, d := range digits {
		if d < 0 || d >= base {
			return 0, fmt.Errorf("digit %d in base %d: %w", d, base, ErrDigit)
		}
		if value > (^uint64(0)-uint64(d))/uint64(base) {
			return 0, fmt.Errorf("digits overflow uint64 in base %d", base)
		}
		value = value*uint64(base) + uint64(d)
	}
	return value, nil
}

// Render returns the textual representation of value in the given base.
func Render(value uint64, base int) (string, error) {
	digits, err := Digits(value, base)
	if err != nil {
		return "", err
	}
	return rendererFor(base).render(digits), nil
}

// Parse is the inverse of Render. Alphanumeric bases parse
// case-insensitively.
func Parse(s string, base int) (uint64, error) {
	if err := checkBase(base); err != nil {
		return 0, err
	}
	digits, err := rendererFor(base).parse(s)
	if err != nil {
		return 0, err
	}
	return Value(digits, base)
}

// Format renders an already split digit sequence in the base's textual
// form, using the same strategy Render uses for integers.
func Format(digits []int, base int) (string, error) {
	if err := checkBase(base); err != nil {
		return "", err
	}
	for _, d := range digits {
		if d < 0 || d >= base {
			return "", fmt.Errorf("digit %d in base %d: %w", d, base, ErrDigit)
		}
	}
	return rendererFor(base).render(digits), nil
}

type renderer interface {
	render(digits []int) string
	parse(s string) ([]int, error)
}

func rendererFor(base int) renderer {
	if base <= maxAlnumBase {
		return alnum{}
	}
	return wide{base}
}

// alnum renders digits as 0-9 then a-z, like strconv.
type alnum struct{}

const alnumDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

func (alnum) render(digits []int) string {
	b := make([]byte, len(digits))
	for i, d := range digits {
		b[i] = alnumDigits[d]
	}
	return string(b)
}

func (alnum) parse(s string) ([]int, error) {
	digits := make([]int, 0, len(s))
	for _, r := range s {
		var d int
		switch {
		case '0' <= r && r <= '9':
			d = int(r - '0')
		case 'a' <= r && r <= 'z':
			d = int(r-'a') + 10
		case 'A' <= r && r <= 'Z':
			d = int(r-'A') + 10
		default:
			return nil, fmt.Errorf("character %q: %w", r, ErrDigit)
		}
		digits = append(digits, d)
	}
	return digits, nil
}

// wide renders each digit value as the code point equal to it. Go
// strings cannot hold surrogate code points, so digit values in
// [0xD800, 0xDFFF] shift to the plane right above the basic plane;
// direct digits never reach that range, every digit value is below
// 0x10000.
type wide struct {
	base int
}

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	remapBase    = 0x10000
)

func (w wide) render(digits []int) string {
	rs := make([]rune, len(digits))
	for i, d := range digits {
		if surrogateMin <= d && d <= surrogateMax {
			d = remapBase + d - surrogateMin
		}
		rs[i] = rune(d)
	}
	return string(rs)
}

func (w wide) parse(s string) ([]int, error) {
	var digits []int
	for _, r := range s {
		d := int(r)
		if remapBase <= d && d <= remapBase+surrogateMax-surrogateMin {
			d = surrogateMin + d - remapBase
		}
		if d >= w.base {
			return nil, fmt.Errorf("code point %d in base %d: %w", r, w.base, ErrDigit)
		}
		digits = append(digits, d)
	}
	return digits, nil
}
