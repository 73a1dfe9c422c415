// Package main is the entry point for the freight-cost CLI.
package main

import (
	"os"

	"freight-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
