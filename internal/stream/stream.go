// Package stream caches lazily materialized digit prefixes of constant
// expansions, keyed by constant and base.
package stream

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"borges/internal/constant"
)

// A Generator produces the first n fractional digits of a named
// constant in a base. It must be deterministic: the same arguments must
// always yield the same digits.
type Generator interface {
	Digits(name string, base, n int) ([]uint16, error)
}

type constantGenerator struct{}

func (constantGenerator) Digits(name string, base, n int) ([]uint16, error) {
	c, err := constant.Lookup(name)
	if err != nil {
		return nil, err
	}
	return c.Digits(base, n)
}

// Constants returns the Generator backed by the enumerated constants.
func Constants() Generator {
	return constantGenerator{}
}

// Key identifies one cached digit stream.
type Key struct {
	Constant string
	Base     int
}

// Cache holds append-only digit prefixes. Prefixes only ever grow;
// digits already handed out never change. Safe for concurrent use.
type Cache struct {
	gen Generator

	mx      sync.Mutex
	entries map[Key]*entry
}

type entry struct {
	mx     sync.RWMutex
	digits []uint16
}

func New(gen Generator) *Cache {
	if gen == nil {
		panic("stream: generator is required")
	}
	return &Cache{
		gen:     gen,
		entries: map[Key]*entry{},
	}
}

func (c *Cache) entry(key Key) *entry {
	c.mx.Lock()
	defer c.mx.Unlock()

	e := c.entries[key]
	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Extension rounds up to whole chunks so that digit-by-digit consumers
// do not trigger a recomputation per digit.
const minChunk = 1024

// Prefix returns the first n digits of the constant's expansion in the
// given base. The returned slice must not be modified.
func (c *Cache) Prefix(name string, base, n int) ([]uint16, error) {
	if n < 0 {
		return nil, fmt.Errorf("stream: digit count must not be negative, got %d", n)
	}

	e := c.entry(Key{Constant: name, Base: base})

	e.mx.RLock()
	if len(e.digits) >= n {
		digits := e.digits[:n:n]
		e.mx.RUnlock()
		return digits, nil
	}
	e.mx.RUnlock()

	e.mx.Lock()
	defer e.mx.Unlock()

	if len(e.digits) < n {
		grow := max(n, 2*len(e.digits), minChunk)
		digits, err := c.gen.Digits(name, base, grow)
		if err != nil {
			return nil, err
		}
		if len(digits) < n {
			return nil, fmt.Errorf("stream: %s base %d: generator returned %d digits, want %d", name, base, len(digits), n)
		}
		if !slices.Equal(digits[:len(e.digits)], e.digits) {
			return nil, fmt.Errorf("stream: %s base %d: recomputed prefix does not match cached digits", name, base)
		}
		e.digits = append(e.digits, digits[len(e.digits):]...)
	}
	return e.digits[:n:n], nil
}

// DigitAt returns the digit at 1-indexed position n of the constant's
// fractional expansion in the given base.
func (c *Cache) DigitAt(name string, base, n int) (uint16, error) {
	if n < 1 {
		return 0, fmt.Errorf("stream: position must be at least 1, got %d", n)
	}
	digits, err := c.Prefix(name, base, n)
	if err != nil {
		return 0, err
	}
	return digits[n-1], nil
}

// Seed installs a precomputed prefix, extending the cached one when the
// seed is longer. A seed that contradicts already cached digits is
// ignored.
func (c *Cache) Seed(name string, base int, digits []uint16) {
	e := c.entry(Key{Constant: name, Base: base})

	e.mx.Lock()
	defer e.mx.Unlock()

	if len(digits) <= len(e.digits) {
		return
	}
	if !slices.Equal(digits[:len(e.digits)], e.digits) {
		return
	}
	e.digits = append(e.digits, digits[len(e.digits):]...)
}

// All iterates over a snapshot of every cached prefix.
func (c *Cache) All() iter.Seq2[Key, []uint16] {
	return func(yield func(Key, []uint16) bool) {
		c.mx.Lock()
		entries := make(map[Key]*entry, len(c.entries))
		for key, e := range c.entries {
			entries[key] = e
		}
		c.mx.Unlock()

		for key, e := range entries {
			e.mx.RLock()
			digits := slices.Clone(e.digits)
			e.mx.RUnlock()

			if !yield(key, digits) {
				return
			}
		}
	}
}
