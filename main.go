package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sarops/medkit/pkg/cli"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	ctx := context.Background()
	if err := cli.Run(ctx, os.Args); err != nil {
		os.Exit(err.Code)
	}
}
