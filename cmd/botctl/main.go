package main

import (
	"os"

	"github.com/splitbot-dev/splitbot/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
