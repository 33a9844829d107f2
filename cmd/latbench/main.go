// Command latbench measures per-endpoint HTTP latency for mocked and backend
// clients.
package main

import (
	"os"

	"github.com/wesleyorama2/latbench/internal/cli"
)

// Main runs the CLI and returns the process exit code.
func Main() int {
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
