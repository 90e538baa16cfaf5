package main

import (
	"os"

	"github.com/goliatone/go-postboard/cmd/postboard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
