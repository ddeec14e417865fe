package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timi233/enterprise-brain/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "enterprise-brain",
	Short: "Progressive company enrichment pipeline",
	Long:  "Resolves free-text company queries against local records, enriches them via web search and Claude analysis, and streams progressively refined profiles as NDJSON.",
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
