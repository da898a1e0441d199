// Package main is the entry point for the grepl CLI.
package main

import (
	"os"

	"github.com/runger/grepl/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
