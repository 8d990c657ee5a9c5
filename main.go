package main

import (
	"os"

	"github.com/ChristianHoesel/export-google-files/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
