// Package locate finds the first occurrence of a digit sequence inside
// a lazily produced digit stream.
package locate

// A Source yields the digit at a 0-indexed offset of some digit stream.
type Source interface {
	DigitAt(n int) (uint16, error)
}

// DefaultLimit bounds how many digits a search examines when the caller
// does not choose a limit.
const DefaultLimit = 10000

// Result reports the outcome of a search. Found is genuine: a false
// value means the target does not occur within the examined digits, and
// no position is ever invented for it.
type Result struct {
	Found bool
	Start int
}

// Find scans src for the first 0-indexed offset at which target occurs,
// examining at most limit digits. A limit below 1 means DefaultLimit.
// An empty target matches at offset 0.
func Find(src Source, target []uint16, limit int) (Result, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	if len(target) == 0 {
		return Result{Found: true, Start: 0}, nil
	}
	if len(target) > limit {
		return Result{}, nil
	}

	// Buffer every digit read so src is consulted once per offset and
	// never past the limit.
	buf := make([]uint16, 0, min(limit, 4096))
	digit := func(n int) (uint16, error) {
		for len(buf) <= n {
			d, err := src.DigitAt(len(buf))
			if err != nil {
				return 0, err
			}
			buf = append(buf, d)
		}
		return buf[n], nil
	}

	for s := 0; s+len(target) <= limit; s++ {
		matched := true
		for i, want := range target {
			d, err := digit(s + i)
			if err != nil {
				return Result{}, err
			}
			if d != want {
				matched = false
				break
			}
		}
		if matched {
			return Result{Found: true, Start: s}, nil
		}
	}
	return Result{}, nil
}
