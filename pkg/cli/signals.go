package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler creates a context that is canceled on SIGINT or SIGTERM.
// A second signal exits the process immediately with ExitInterrupted.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go handleSignals(sigChan, cancel, os.Exit)

	return ctx
}

// handleSignals cancels on the first signal and calls exit on the second.
func handleSignals(sigChan <-chan os.Signal, cancel context.CancelFunc, exit func(int)) {
	<-sigChan
	cancel()
	<-sigChan
	exit(ExitInterrupted)
}
