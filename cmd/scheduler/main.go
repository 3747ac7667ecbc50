// Command scheduler is the CLI entry point for the rehearsal scheduler
// core. It reads a repartition table and an availability table, runs the
// search, and writes the structured result as JSON (plus an optional xlsx
// export), standing in for the out-of-scope upload endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/orchestra-tools/rehearsal-scheduler/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
