// Command jsonsearch compiles JSON search documents to SQL and runs them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/jsonsearch/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
