// Package constant computes fractional digit expansions of named
// mathematical constants to arbitrary precision.
package constant

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"
)

const (
	MinBase = 2
	MaxBase = 65536
)

var (
	ErrUnknown = errors.New("unknown constant")
	ErrBase    = fmt.Errorf("base must be between %d and %d", MinBase, MaxBase)
)

// A Constant is a named irrational number whose fractional expansion can
// be computed in any base. The set of constants is fixed at compile time.
type Constant struct {
	name string
	frac func(scale *big.Int) *big.Int // floor(frac(c) * scale), minus a few ulps
}

var (
	Pi    = &Constant{name: "pi", frac: piFrac}
	E     = &Constant{name: "e", frac: eFrac}
	Phi   = &Constant{name: "phi", frac: phiFrac}
	Sqrt2 = &Constant{name: "sqrt2", frac: sqrt2Frac}
	Ln2   = &Constant{name: "ln2", frac: ln2Frac}
)

// All lists every known constant in declaration order. The order is part
// of the encoder's tie-break contract, so it must stay stable.
var All = []*Constant{Pi, E, Phi, Sqrt2, Ln2}

func Lookup(name string) (*Constant, error) {
	for _, c := range All {
		if c.name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("constant %q: %w", name, ErrUnknown)
}

func (c *Constant) Name() string { return c.name }

// Digits returns the first n fractional digits of c in the given base,
// most significant first. Every digit is in [0, base). The computation is
// exact up to guard precision: calling Digits with a larger n yields a
// sequence whose prefix equals any shorter call's result.
func (c *Constant) Digits(base, n int) ([]uint16, error) {
	if base < MinBase || base > MaxBase {
		return nil, fmt.Errorf("base %d: %w", base, ErrBase)
	}
	if n < 0 {
		return nil, fmt.Errorf("digit count must not be negative, got %d", n)
	}
	if n == 0 {
		return nil, nil
	}

	g := guard(base)
	v := c.frac(pow(base, n+g))
	v.Div(v, pow(base, g))

	digits := make([]uint16, n)
	b := big.NewInt(int64(base))
	m := new(big.Int)
	for i := n - 1; i >= 0; i-- {
		v.DivMod(v, b, m)
		digits[i] = uint16(m.Uint64())
	}
	return digits, nil
}

// guard returns how many extra digits to compute so that series
// truncation error never reaches the requested digits. The series below
// lose at most one ulp per term, so ~2^96 worth of slack is far more
// than any realistic request accumulates.
func guard(base int) int {
	b := bits.Len(uint(base - 1))
	return max(8, (96+b-1)/b)
}

func pow(base, n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(base)), big.NewInt(int64(n)), nil)
}

// piFrac uses Machin's formula: pi = 16 arctan(1/5) - 4 arctan(1/239).
func piFrac(scale *big.Int) *big.Int {
	pi := new(big.Int).Mul(big.NewInt(16), atanInv(5, scale))
	pi.Sub(pi, new(big.Int).Mul(big.NewInt(4), atanInv(239, scale)))
	return pi.Sub(pi, new(big.Int).Mul(big.NewInt(3), scale))
}

// atanInv computes arctan(1/x) * scale by the Gregory series
// 1/x - 1/(3x^3) + 1/(5x^5) - ...
func atanInv(x int64, scale *big.Int) *big.Int {
	xx := big.NewInt(x * x)
	pow := new(big.Int).Div(scale, big.NewInt(x))
	sum := new(big.Int)
	t := new(big.Int)
	for k := int64(1); pow.Sign() != 0; k += 2 {
		t.Div(pow, big.NewInt(k))
		if k%4 == 1 {
			sum.Add(sum, t)
		} else {
			sum.Sub(sum, t)
		}
		pow.Div(pow, xx)
	}
	return sum
}

// eFrac sums the factorial series: frac(e) = 1/2! + 1/3! + ...
func eFrac(scale *big.Int) *big.Int {
	sum := new(big.Int)
	term := new(big.Int).Set(scale)
	for k := int64(2); ; k++ {
		term.Div(term, big.NewInt(k))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}
	return sum
}

// phiFrac computes frac(phi) = (sqrt(5) - 1) / 2.
func phiFrac(scale *big.Int) *big.Int {
	s := sqrtScaled(5, scale)
	s.Sub(s, scale)
	return s.Rsh(s, 1)
}

// sqrt2Frac computes frac(sqrt(2)) = sqrt(2) - 1.
func sqrt2Frac(scale *big.Int) *big.Int {
	s := sqrtScaled(2, scale)
	return s.Sub(s, scale)
}

// sqrtScaled returns floor(sqrt(x) * scale) via an exact integer root.
func sqrtScaled(x int64, scale *big.Int) *big.Int {
	s := new(big.Int).Mul(scale, scale)
	s.Mul(s, big.NewInt(x))
	return s.Sqrt(s)
}

// ln2Frac sums ln(2) = 1/(1*2) + 1/(2*4) + 1/(3*8) + ...
func ln2Frac(scale *big.Int) *big.Int {
	sum := new(big.Int)
	pow := new(big.Int).Set(scale)
	t := new(big.Int)
	for k := int64(1); ; k++ {
		pow.Rsh(pow, 1)
		if pow.Sign() == 0 {
			break
		}
		t.Div(pow, big.NewInt(k))
		sum.Add(sum, t)
	}
	return sum
}
