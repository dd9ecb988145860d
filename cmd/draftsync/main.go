// Package main provides the entry point for the draftsync CLI tool.
package main

import (
	"context"
	"os"

	"github.com/draftsync/draftsync/cmd/draftsync/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Cancellation is delivered through the context; the engine honors
	// it at document boundaries so an in-flight operation completes.
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		app.ExitOnError(err)
	}
}
