package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/rpcore/internal/config"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate a scenario file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s is valid: %d sources, projection %d-%d\n",
				args[0], len(cfg.Assets), cfg.Scenario.StartYear, cfg.LastYear())
			if cfg.Conversion != nil {
				fmt.Fprintf(out, "conversion plan: %d years from %d\n",
					cfg.Conversion.YearsToConvert, cfg.Conversion.ConversionStartYear)
			}
			return nil
		},
	}
}
