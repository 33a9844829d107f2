package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the latbench command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "latbench",
		Short:   "Measure HTTP latency of mocked and real backends",
		Version: version,
		Long: `latbench calls a table of named endpoints one request at a time, once as a
mocked client and once as a backend client, discards a warmup phase, trims the
slowest outliers and reports min/max/average latency per endpoint and identity.`,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newTargetCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// Execute runs the root command and reports any error on stderr.
// This is called by main.main().
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
