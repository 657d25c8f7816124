package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SetupInterruptHandler cancels the run context on SIGINT/SIGTERM.
// Outstanding fetches drain through the normal fail-fast path, so no
// partial epub is ever written. A second signal exits immediately.
func SetupInterruptHandler(cancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Cancelling outstanding fetches...")
		cancel()

		<-sig
		fmt.Println("\nExiting due to interrupt.")
		os.Exit(1)
	}()
}
