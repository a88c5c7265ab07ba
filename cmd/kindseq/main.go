// Command kindseq compiles, evaluates and memoizes pipelines over sequences
// of kinds declared in CUE.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/kindseq/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
