// Package main implements jobctl, the operator CLI for the presentation job
// database: schema migrations, reaping stale jobs, inspecting job status and
// minting development tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, e := newRootCmd()
	err := root.ExecuteContext(ctx)
	if cerr := e.close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "jobctl: failed to release resources:", cerr)
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}
