package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/vvka-141/shopload/internal/cli"
	"github.com/vvka-141/shopload/pkg/shopload"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(shopload.ExitPanic)
		}
	}()

	if os.Getenv("SHOPLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()

	if err != nil {
		os.Exit(shopload.ExitCodeForError(err))
	}
}
