package main

import (
	"os"

	"github.com/abhisek/progresstrack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
