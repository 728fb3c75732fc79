package main

import (
	"context"
	"os"

	"github.com/desertthunder/spotweb/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "spotweb",
		Usage:    "Browser front end for spotdl downloads",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
