package main

import (
	"os"

	"branikbot/cmd/branikbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
