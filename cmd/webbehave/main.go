// Package main provides the webbehave CLI entry point.
// webbehave runs plain-text browser automation scripts against Chrome.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"webbehave/internal/browser"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := NewApp(browser.NewChromeLauncher(), os.Stdout)
	err := app.CreateRootCommand().ExecuteContext(ctx)
	stop()

	if ee, ok := err.(*exitError); err != nil && (!ok || ee.err != nil) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
