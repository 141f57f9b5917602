package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Endogen/web2api-recipes/cmd/web2api/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := commands.Root().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
