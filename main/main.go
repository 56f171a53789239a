package main

import (
	"os"

	"github.com/phil-mansfield/ptcl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
