package main

import (
	"os"

	"github.com/abhisek/knowing/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
