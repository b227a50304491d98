// Package store persists computed digit prefixes in a BoltDB file so
// expensive expansions survive between command runs. Digits are pure
// functions of (constant, base, position), so the store only ever grows
// prefixes and never needs invalidation.
package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"borges/internal/stream"

	"go.etcd.io/bbolt"
)

var bucketDigits = []byte("digits")

type Config struct {
	File string `yaml:"file"`
}

var db *bbolt.DB

func Open(config Config) {
	if db != nil {
		panic("store: already opened")
	}
	if config.File == "" {
		panic("store: file is required")
	}

	err := os.MkdirAll(filepath.Dir(config.File), 0755)
	if err != nil {
		panic(fmt.Errorf("store: create store dir: %w", err))
	}

	db, err = bbolt.Open(config.File, 0600, &bbolt.Options{
		Timeout: 30 * time.Second,
	})
	if err != nil {
		panic(fmt.Errorf("store: open bbolt db: %w", err))
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDigits)
		if err != nil {
			return fmt.Errorf("create bucket %q: %w", bucketDigits, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		db = nil
		panic(fmt.Errorf("store: initialize buckets: %w", err))
	}
}

func Close() error {
	if db == nil {
		panic("store: not opened")
	}

	err := db.Close()
	if err != nil {
		return fmt.Errorf("store: close bbolt db: %w", err)
	}
	db = nil
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

func Closer() io.Closer {
	return closerFunc(Close)
}

func keyBytes(key stream.Key) []byte {
	return fmt.Appendf(nil, "%s/%d", key.Constant, key.Base)
}

// Digits are stored as two big-endian bytes each; every digit value is
// below 65536.
func marshal(digits []uint16) []byte {
	data := make([]byte, 2*len(digits))
	for i, d := range digits {
		binary.BigEndian.PutUint16(data[2*i:], d)
	}
	return data
}

func unmarshal(data []byte, base int) ([]uint16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("store: odd record length %d", len(data))
	}

	digits := make([]uint16, len(data)/2)
	for i := range digits {
		d := binary.BigEndian.Uint16(data[2*i:])
		if int(d) >= base {
			return nil, fmt.Errorf("store: digit %d out of range for base %d", d, base)
		}
		digits[i] = d
	}
	return digits, nil
}

// Load returns the stored prefix for the key, or nil when absent.
func Load(key stream.Key) ([]uint16, error) {
	if db == nil {
		panic("store: not opened")
	}

	var digits []uint16
	err := db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDigits)
		if b == nil {
			return fmt.Errorf("store: digits bucket not found")
		}

		data := b.Get(keyBytes(key))
		if data == nil {
			return nil
		}

		var err error
		digits, err = unmarshal(data, key.Base)
		return err
	})
	if err != nil {
		return nil, err
	}
	return digits, nil
}

// Save stores the prefix for the key when it is longer than the stored
// one.
func Save(key stream.Key, digits []uint16) error {
	if db == nil {
		panic("store: not opened")
	}

	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDigits)
		if b == nil {
			return fmt.Errorf("store: digits bucket not found")
		}

		k := keyBytes(key)
		if existing := b.Get(k); len(existing) >= 2*len(digits) {
			return nil
		}
		return b.Put(k, marshal(digits))
	})
}

// Warm seeds the cache with any stored prefixes for the given keys.
func Warm(cache *stream.Cache, keys []stream.Key) error {
	for _, key := range keys {
		digits, err := Load(key)
		if err != nil {
			return fmt.Errorf("store: warm %s base %d: %w", key.Constant, key.Base, err)
		}
		if digits != nil {
			cache.Seed(key.Constant, key.Base, digits)
		}
	}
	return nil
}

// Dump writes every cached prefix back to the store.
func Dump(cache *stream.Cache) error {
	for key, digits := range cache.All() {
		if err := Save(key, digits); err != nil {
			return fmt.Errorf("store: dump %s base %d: %w", key.Constant, key.Base, err)
		}
	}
	return nil
}
