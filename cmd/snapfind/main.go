// Package main provides the entry point for the snapfind CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/snapfind/cmd/snapfind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
