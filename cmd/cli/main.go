package main

import (
	"os"
)

func main() {
	if err := createRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
