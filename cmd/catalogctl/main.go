// Package main is the catalogctl entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/permcatalog/edu-catalog/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(cli.Options{}).ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "catalogctl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
