package main

import (
	"os"

	"github.com/pixielity-inc/phphive-cli-sub001/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
