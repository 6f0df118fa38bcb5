package main

import (
	"os"

	"github.com/eren/chronotrace/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
