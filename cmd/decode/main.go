package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"borges/internal/codec"
	"borges/internal/config"
	"borges/internal/ctxlog"
	"borges/internal/rec"
	"borges/internal/store"
	"borges/internal/stream"
)

func run(ctx context.Context, enc codec.Encoding, configFile string) (err error) {
	defer rec.Error(&err)

	logger := ctxlog.Get(ctx)

	var c config.Config
	if configFile != "" {
		c, err = config.Load(ctx, configFile)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	cache := stream.New(stream.Constants())

	if c.Store.File != "" {
		store.Open(c.Store)
		defer ctxlog.Close(ctx, "store", store.Closer())

		key := stream.Key{Constant: enc.Constant, Base: enc.Base}
		if err := store.Warm(cache, []stream.Key{key}); err != nil {
			logger.Warn("warm digit cache", "error", err)
		}
		defer func() {
			if err := store.Dump(cache); err != nil {
				logger.Warn("save digit cache", "error", err)
			}
		}()
	}

	text, err := codec.New(c.Codec, cache).Decode(ctx, enc)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

func main() {
	if len(os.Args) <= 4 {
		fmt.Println("Usage: decode <constant> <base> <start> <length> [config.yaml]")
		return
	}

	enc := codec.Encoding{Constant: os.Args[1]}

	var err error
	for _, field := range []struct {
		name string
		arg  string
		dst  *int
	}{
		{"base", os.Args[2], &enc.Base},
		{"start", os.Args[3], &enc.Start},
		{"length", os.Args[4], &enc.Length},
	} {
		*field.dst, err = strconv.Atoi(field.arg)
		if err != nil {
			fmt.Printf("%s must be a whole number, got %q.\n", field.name, field.arg)
			return
		}
	}

	configFile := ""
	if len(os.Args) > 5 {
		configFile = os.Args[5]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx = ctxlog.Setup(ctx)
	logger := ctxlog.Get(ctx)

	err = run(ctx, enc, configFile)
	if err != nil {
		logger.Error("decode failed", "error", err)
		os.Exit(1)
	}
}
