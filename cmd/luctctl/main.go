package main

import (
	"os"

	"github.com/noah-isme/luct-report-api/cmd/luctctl/command"
)

func main() {
	if err := command.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
