package main

import (
	"os"

	"github.com/knowlympics/knowlympics-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
