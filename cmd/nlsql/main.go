package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/nlsql/internal/cli"
)

func main() {
	// Ctrl-C aborts the in-flight request instead of leaving it dangling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Main(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
