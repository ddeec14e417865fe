package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/timi233/enterprise-brain/internal/pipeline"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich [query]",
	Short: "Run one enrichment, printing NDJSON snapshots to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Pipeline.Run(ctx, args[0], pipeline.NewStreamEmitter(os.Stdout, nil))
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
