package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/productconsole/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancel in-flight requests on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return cli.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
