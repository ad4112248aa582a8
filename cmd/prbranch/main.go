package main

import (
	"os"

	"github.com/vanpelt/prbranch/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
