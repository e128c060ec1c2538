// Package main implements the entry point for the grading API server,
// which accepts exam answer submissions, grades them asynchronously with
// an LLM, and notifies the calling system when a job settles.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	if err := app.serve(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
