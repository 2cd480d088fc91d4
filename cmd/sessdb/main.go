package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charles-muller/AspNetSessionState/internal/cli"
	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(sessionstate.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(sessionstate.ExitCodeForError(err))
	}
}
