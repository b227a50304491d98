// Package config loads the shared YAML configuration of the borges
// commands.
package config

import (
	"context"
	"fmt"
	"os"

	"borges/internal/codec"
	"borges/internal/ctxlog"
	"borges/internal/store"
	"borges/internal/stream"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Codec codec.Config `yaml:"codec"`
	Store store.Config `yaml:"store"`
}

func Load(ctx context.Context, filename string) (Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Config{}, fmt.Errorf("open %q: %w", filename, err)
	}
	defer ctxlog.Close(ctx, "config file", file)

	dec := yaml.NewDecoder(file, yaml.Strict())

	var config Config
	err = dec.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("yaml: %w", err)
	}

	return config, nil
}

// Keys lists every (constant, base) pair the codec config spans, for
// warming the digit cache from the store.
func (c Config) Keys() []stream.Key {
	cc := c.Codec.Normalized()

	keys := make([]stream.Key, 0, len(cc.Constants)*len(cc.Bases))
	for _, name := range cc.Constants {
		for _, base := range cc.Bases {
			keys = append(keys, stream.Key{Constant: name, Base: base})
		}
	}
	return keys
}
