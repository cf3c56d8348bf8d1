// Package main provides the entry point for the dirsentry CLI.
package main

import (
	"os"

	"github.com/dirsentry/dirsentry/cmd/dirsentry/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
