package main

import (
	"os"

	"github.com/ibare/baden/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
