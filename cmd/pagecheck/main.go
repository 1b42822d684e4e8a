// Command pagecheck is the catalog-driven test orchestration CLI.
package main

import (
	"os"

	"github.com/pagecheck-labs/pagecheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
