package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tableflip.dev/fedash/pkg/commands"
	"tableflip.dev/fedash/pkg/commands/options"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.New().ExecuteContext(ctx)
	stop()
	if errors.Is(err, options.ErrReported) {
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
