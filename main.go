package main

import (
	"os"

	"github.com/cwarden/agenda/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
