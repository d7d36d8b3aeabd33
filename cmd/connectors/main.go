package main

import (
	"fmt"
	"os"

	"github.com/architeacher/connectors/cmd/connectors/command"
)

func main() {
	if err := command.NewCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
