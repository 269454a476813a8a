// Package main is the entry point for the gridline CLI.
package main

import (
	"os"

	"github.com/gridline-labs/gridline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
