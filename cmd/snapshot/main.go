package main

import (
	"os"

	"github.com/Mayur-HT/Snapshot/internal/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
