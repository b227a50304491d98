package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"borges/internal/codec"
	"borges/internal/config"
	"borges/internal/ctxlog"
	"borges/internal/rec"
	"borges/internal/store"
	"borges/internal/stream"
)

func run(ctx context.Context, msg, configFile string) (err error) {
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

		if err := store.Warm(cache, c.Keys()); err != nil {
			logger.Warn("warm digit cache", "error", err)
		}
		defer func() {
			if err := store.Dump(cache); err != nil {
				logger.Warn("save digit cache", "error", err)
			}
		}()
	}

	enc, err := codec.New(c.Codec, cache).Encode(ctx, msg)
	if err != nil {
		return err
	}

	fmt.Printf("%s %d %d %d\n", enc.Constant, enc.Base, enc.Start, enc.Length)
	return nil
}

func main() {
	if len(os.Args) <= 1 {
		fmt.Println("Usage: encode <message> [config.yaml]")
		return
	}

	msg := strings.TrimSpace(os.Args[1])
	if msg == "" {
		fmt.Println("Message must not be empty.")
		return
	}

	configFile := ""
	if len(os.Args) > 2 {
		configFile = os.Args[2]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx = ctxlog.Setup(ctx)
	logger := ctxlog.Get(ctx)

	err := run(ctx, msg, configFile)
	if err != nil {
		logger.Error("encode failed", "error", err)
		os.Exit(1)
	}
}
