package main

import (
	"os"

	"github.com/senank/ashby-screener/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
