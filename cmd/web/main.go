package main

import (
	"context"
	"fmt"
	"os"

	"sleepcli/internal/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sleeppulse-web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	application, err := app.NewApplication()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := application.LoadDataset(ctx); err != nil {
		return err
	}

	return application.Run(ctx)
}
