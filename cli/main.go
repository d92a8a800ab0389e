package main

import (
	"fmt"
	"os"

	"github.com/trebuchet-org/treb-registry/internal/cli"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render.FormatError(err.Error()))
		os.Exit(1)
	}
}
