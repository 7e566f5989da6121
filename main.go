// Command mflow compiles MFlow programs to JavaScript for an HTML canvas.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mflow/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
