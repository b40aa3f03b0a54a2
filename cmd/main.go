package main

import (
	"os"

	"github.com/NEUIR/UNIKIE-BENCH/cmd/commands"
)

func main() {
	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
