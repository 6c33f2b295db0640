package main

import (
	"os"

	"github.com/vti-labs/recruit-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
