package main

import (
	"os"

	"github.com/rustyeddy/tfcandle/cmd/tfcandle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
