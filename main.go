package main

import (
	"os"

	"github.com/maganghub-tools/mh-finder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
