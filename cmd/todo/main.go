// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kratos/kratos/v2/log"

	"todo/internal/backend/kvstore"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/store"
)

func init() {
	// Library code (config file source) logs through the global logger.
	log.SetLogger(logging.New(os.Stderr, logging.DefaultLevel))
}

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Create store factory
	factory := func(ctx context.Context, cfg *config.Config, logger log.Logger) (store.TaskStore, error) {
		s, err := kvstore.Open(kvstore.Options{
			Dir:           cfg.StorePath,
			SchemaVersion: cfg.SchemaVersion,
			Logger:        logger,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
