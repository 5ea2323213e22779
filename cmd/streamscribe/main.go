package main

import (
	"os"

	"github.com/streamscribe-ai/streamscribe/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
