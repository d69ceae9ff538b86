package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ponyclubs/clubsync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "clubsync",
	Short: "Club-registry reconciliation for the pony club federation",
	Long:  "Extracts club records from PCA export payloads, fuzzy-matches them against the federation registry, and applies selected updates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
