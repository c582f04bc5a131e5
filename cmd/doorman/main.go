package main

import (
	"os"

	"github.com/doorman-bot/doorman/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
