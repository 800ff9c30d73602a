package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/instkit/cmd/instkit/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, commands.RenderError(err))
		os.Exit(1)
	}
}
