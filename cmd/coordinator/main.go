package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fleetdesk/internal/cli"
)

func main() {
	opts, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// cancel the root context on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		os.Exit(1)
	}
}
