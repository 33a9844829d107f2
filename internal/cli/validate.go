package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/latbench/internal/config"
	"github.com/wesleyorama2/latbench/internal/output"
)

func newValidateCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "validate",
		Short:        "Check a configuration file without making any calls",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd, configFile)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file (YAML or JSON)")
	cmd.MarkFlagRequired("config")
	return cmd
}

func validateConfig(cmd *cobra.Command, path string) error {
	console := output.NewConsole(output.ConsoleConfig{Writer: cmd.OutOrStdout()})

	cfg, err := config.Load(path)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		var verrs *config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs.Errors {
				console.Failure("%s", e.Error())
			}
			return fmt.Errorf("%s is invalid", path)
		}
		return err
	}

	rc, err := cfg.RunConfig()
	if err != nil {
		return err
	}
	pairs := 0
	for _, ep := range rc.Endpoints {
		pairs += len(ep.AllowedIdentities())
	}
	console.Success("%s is valid: %d endpoints, %d measurements of %d calls", path, len(rc.Endpoints), pairs, rc.WarmupRounds+rc.TestingRounds)
	return nil
}
