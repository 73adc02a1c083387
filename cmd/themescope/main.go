// Command themescope summarises browsing history into themes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/themescope/internal/adapters/driving/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetWiring(wire)
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
