package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "Print the effective emission-factor configuration",
	Long: `Print the emission factors and conversion constants the parsers will
apply, after config file and environment overrides. Useful for checking
what a deployment actually runs with before ingesting a reporting period.`,
	RunE: runFactors,
}

func init() {
	rootCmd.AddCommand(factorsCmd)
}

func runFactors(cmd *cobra.Command, args []string) error {
	out, err := yaml.Marshal(map[string]any{"factors": cfg.Factors})
	if err != nil {
		return fmt.Errorf("encoding factors: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
