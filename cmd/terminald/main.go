package main

import (
	"os"

	"github.com/solterminal/solterminal/cmd/terminald/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
