// Package main is the entry point for the compliancectl CLI tool.
package main

import (
	"os"

	"github.com/bgiacomelli/meli-compliance-monitoring/cmd/compliancectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
