package main

import (
	"os"

	"github.com/forgeline/pagesmith/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
