package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/store"
)

var (
	batchLimit int
	batchOrgID string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch enrich contacts without a valid email",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		_, stats, err := env.Batch.RunPending(ctx, store.ContactFilter{
			OrgID:       batchOrgID,
			PendingOnly: true,
			Limit:       batchLimit,
		})
		stats.Log()
		if err != nil {
			return eris.Wrap(err, "batch enrich")
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 100, "max number of contacts to process")
	batchCmd.Flags().StringVar(&batchOrgID, "org", "", "restrict to one organization")
	rootCmd.AddCommand(batchCmd)
}
