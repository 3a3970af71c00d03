package main

import (
	"os"

	"github.com/idilsaglam/lw/internal/cli"
	"github.com/idilsaglam/lw/internal/ui"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(1)
	}
}
