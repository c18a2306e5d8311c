package main

import (
	"os"

	cmd "github.com/arjunkota/capcol/cmd/capcol"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
