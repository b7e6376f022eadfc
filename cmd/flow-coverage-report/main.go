package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"flow-coverage-report/cmd/cli"
	"flow-coverage-report/internal/generator"
	"flow-coverage-report/internal/logger"
)

func main() {
	logger.InitLogger(os.Stderr)

	// Cancelling the context stops the generator child process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	gen := cli.WithSpinner(generator.CommandFromEnv(os.Stderr), os.Stderr)
	code := cli.Run(ctx, os.Args, os.Stdout, os.Stderr, gen)
	stop()
	os.Exit(code)
}
