package main

import (
	"os"

	"personal-budget/internal/cli"
)

func main() {
	if executionError := cli.Execute(); executionError != nil {
		os.Exit(1)
	}
}
