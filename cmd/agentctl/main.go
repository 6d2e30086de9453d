package main

import (
	"os"

	"github.com/alanyang/iobos/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
