// Package codec turns messages into digit-stream coordinates and back.
//
// An encoded message is the 4-tuple (constant, base, start, length): the
// message's code points appear verbatim as length consecutive digits of
// the constant's fractional expansion in that base, beginning at the
// 0-indexed offset start.
package codec

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"borges/internal/constant"
	"borges/internal/ctxlog"
	"borges/internal/locate"
	"borges/internal/message"
	"borges/internal/radix"
	"borges/internal/stream"

	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNotFound     = errors.New("sequence not found within search limit")
	ErrRange        = errors.New("start and length must not be negative")
)

// Config is the caller-overridable search space. Zero fields fall back
// to the full constant set, bases 16/32/64/256 and locate.DefaultLimit.
type Config struct {
	Constants   []string `yaml:"constants"`
	Bases       []int    `yaml:"bases"`
	SearchLimit int      `yaml:"searchLimit"`
}

// Normalized returns the config with defaults filled in.
func (c Config) Normalized() Config {
	if len(c.Constants) == 0 {
		for _, k := range constant.All {
			c.Constants = append(c.Constants, k.Name())
		}
	}
	if len(c.Bases) == 0 {
		c.Bases = []int{16, 32, 64, 256}
	}
	if c.SearchLimit < 1 {
		c.SearchLimit = locate.DefaultLimit
	}
	return c
}

// Encoding describes where a message occurs in a digit stream.
type Encoding struct {
	Constant string
	Base     int
	Start    int
	Length   int
}

type Codec struct {
	cfg     Config
	streams *stream.Cache
}

// New builds a codec over the given digit cache. A nil cache gets a
// fresh one backed by the enumerated constants.
func New(cfg Config, streams *stream.Cache) *Codec {
	if streams == nil {
		streams = stream.New(stream.Constants())
	}
	return &Codec{
		cfg:     cfg.Normalized(),
		streams: streams,
	}
}

// source adapts one (constant, base) stream of the cache to the
// locator's 0-indexed view.
type source struct {
	streams *stream.Cache
	name    string
	base    int
}

func (s *source) DigitAt(n int) (uint16, error) {
	return s.streams.DigitAt(s.name, s.base, n+1)
}

// fits reports whether every code point can occur as a base-base digit.
func fits(seq []int, base int) bool {
	for _, cp := range seq {
		if cp >= base {
			return false
		}
	}
	return true
}

// cost is the combined rendered length of start and length in the given
// base, counted in code points.
func cost(start, length, base int) (int, error) {
	s, err := radix.Render(uint64(start), base)
	if err != nil {
		return 0, err
	}
	l, err := radix.Render(uint64(length), base)
	if err != nil {
		return 0, err
	}
	return utf8.RuneCountInString(s) + utf8.RuneCountInString(l), nil
}

// Encode searches every configured (constant, base) pair for the
// message's code point sequence and returns the most compact hit: the
// one whose start and length render shortest in its own base. Ties go
// to the earliest configured constant, then the earliest base. A
// message found nowhere within the search limit fails with ErrNotFound;
// no position is ever fabricated.
func (c *Codec) Encode(ctx context.Context, msg string) (Encoding, error) {
	if msg == "" {
		return Encoding{}, fmt.Errorf("encode: %w", ErrEmptyMessage)
	}

	for _, base := range c.cfg.Bases {
		if base < constant.MinBase || base > constant.MaxBase {
			return Encoding{}, fmt.Errorf("encode: base %d: %w", base, constant.ErrBase)
		}
	}

	seq := message.Sequence(msg)
	logger := ctxlog.Get(ctx).With("length", len(seq))

	// The searches are independent, only the merge below needs to be
	// deterministic.
	results := make([]locate.Result, len(c.cfg.Constants)*len(c.cfg.Bases))
	var g errgroup.Group
	for ci, name := range c.cfg.Constants {
		for bi, base := range c.cfg.Bases {
			if !fits(seq, base) {
				continue
			}

			idx := ci*len(c.cfg.Bases) + bi
			g.Go(func() error {
				target := make([]uint16, len(seq))
				for i, cp := range seq {
					target[i] = uint16(cp)
				}

				src := &source{streams: c.streams, name: name, base: base}
				res, err := locate.Find(src, target, c.cfg.SearchLimit)
				if err != nil {
					return fmt.Errorf("search %s base %d: %w", name, base, err)
				}
				results[idx] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Encoding{}, fmt.Errorf("encode: %w", err)
	}

	var best Encoding
	bestCost := -1
	for ci, name := range c.cfg.Constants {
		for bi, base := range c.cfg.Bases {
			res := results[ci*len(c.cfg.Bases)+bi]
			if !res.Found {
				continue
			}
			logger.Debug("candidate", "constant", name, "base", base, "start", res.Start)

			cc, err := cost(res.Start, len(seq), base)
			if err != nil {
				return Encoding{}, fmt.Errorf("encode: %w", err)
			}
			if bestCost == -1 || cc < bestCost {
				best = Encoding{Constant: name, Base: base, Start: res.Start, Length: len(seq)}
				bestCost = cc
			}
		}
	}
	if bestCost == -1 {
		return Encoding{}, fmt.Errorf("encode: %w", ErrNotFound)
	}

	logger.Debug("encoded", "constant", best.Constant, "base", best.Base, "start", best.Start)
	return best, nil
}

// Decode re-reads length digits at the encoding's offset and converts
// them back to text.
func (c *Codec) Decode(ctx context.Context, e Encoding) (string, error) {
	if e.Base < constant.MinBase || e.Base > constant.MaxBase {
		return "", fmt.Errorf("decode: base %d: %w", e.Base, constant.ErrBase)
	}
	if e.Start < 0 || e.Length < 0 {
		return "", fmt.Errorf("decode: start %d, length %d: %w", e.Start, e.Length, ErrRange)
	}

	digits, err := c.streams.Prefix(e.Constant, e.Base, e.Start+e.Length)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	seq := make([]int, e.Length)
	for i, d := range digits[e.Start:] {
		seq[i] = int(d)
	}

	text, err := message.Text(seq)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	ctxlog.Get(ctx).Debug("decoded", "constant", e.Constant, "base", e.Base, "length", e.Length)
	return text, nil
}
