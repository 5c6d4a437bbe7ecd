package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/getluma/emissions-extraction-service/internal/logger"
	"github.com/getluma/emissions-extraction-service/internal/models"
)

var version = "1.0.0"

var (
	cfgPath string
	cfg     *models.Config
)

var rootCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract normalized emission records from Spanish utility invoices",
	Long: `extract turns heterogeneous invoice documents (native and scanned PDFs,
CSV and Excel expense exports) into normalized emission records with a
confidence score, ready for ingestion into a carbon accounting backend.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		return logger.Setup(cfg.Log.Level, cfg.Log.Format)
	},
}

func main() {
	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config.yaml (defaults apply when omitted)")
}
