package main

import (
	"os"

	"github.com/conneroisu/porter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
