package main

import (
	"os"

	"github.com/shovanNITS/Quiz-Generator-App/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
