package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"interview-dashboard/internal/logger"
)

// SetupSignalHandling returns a context cancelled on SIGINT or SIGTERM. onShutdown runs
// once, after cancellation, on the signal goroutine.
func SetupSignalHandling(parent context.Context, onShutdown func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Warn("Received signal, shutting down", "signal", sig.String())
			cancel()
			if onShutdown != nil {
				onShutdown()
			}
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
