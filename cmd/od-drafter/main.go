// Command od-drafter edits versioned quote documents for AI assistants.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/od-drafter/internal/adapters/driving/cli"
	"github.com/custodia-labs/od-drafter/internal/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := wire(ctx, homeDir())
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	cli.SetVersion(version)
	cli.SetServices(app.services)

	err = cli.Execute(ctx)
	app.close()
	if err != nil {
		os.Exit(1)
	}
}

// homeDir returns $OD_DRAFTER_HOME, or empty for the default ~/.od-drafter.
func homeDir() string {
	return os.Getenv("OD_DRAFTER_HOME")
}
