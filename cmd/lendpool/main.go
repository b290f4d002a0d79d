package main

import (
	"os"

	"github.com/rustyeddy/lendpool/cmd/lendpool/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
