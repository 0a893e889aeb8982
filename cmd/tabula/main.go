// Package main is the entry point for the tabula CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/tabula/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
