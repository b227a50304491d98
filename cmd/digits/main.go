package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"borges/internal/config"
	"borges/internal/ctxlog"
	"borges/internal/radix"
	"borges/internal/rec"
	"borges/internal/store"
	"borges/internal/stream"
)

func run(ctx context.Context, name string, base, count int, configFile string) (err error) {
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

		key := stream.Key{Constant: name, Base: base}
		if err := store.Warm(cache, []stream.Key{key}); err != nil {
			logger.Warn("warm digit cache", "error", err)
		}
		defer func() {
			if err := store.Dump(cache); err != nil {
				logger.Warn("save digit cache", "error", err)
			}
		}()
	}

	digits, err := cache.Prefix(name, base, count)
	if err != nil {
		return err
	}

	seq := make([]int, len(digits))
	for i, d := range digits {
		seq[i] = int(d)
	}
	s, err := radix.Format(seq, base)
	if err != nil {
		return err
	}

	fmt.Println(s)
	return nil
}

func main() {
	if len(os.Args) <= 3 {
		fmt.Println("Usage: digits <constant> <base> <count> [config.yaml]")
		return
	}

	name := os.Args[1]

	base, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Printf("base must be a whole number, got %q.\n", os.Args[2])
		return
	}

	count, err := strconv.Atoi(os.Args[3])
	if err != nil || count < 0 {
		fmt.Printf("count must be a non-negative whole number, got %q.\n", os.Args[3])
		return
	}

	configFile := ""
	if len(os.Args) > 4 {
		configFile = os.Args[4]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx = ctxlog.Setup(ctx)
	logger := ctxlog.Get(ctx)

	err = run(ctx, name, base, count, configFile)
	if err != nil {
		logger.Error("digits failed", "error", err)
		os.Exit(1)
	}
}
