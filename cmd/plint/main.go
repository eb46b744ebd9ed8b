package main

import (
	"fmt"
	"os"

	"github.com/gnolang/plint/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ExitCode(err); code > 1 {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cmd.ExitCode(err))
	}
}
