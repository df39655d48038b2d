package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var enrichContactID string

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a single contact",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		outcomes, stats, err := env.Batch.Run(ctx, []string{enrichContactID})
		if err != nil {
			return eris.Wrap(err, "enrich contact")
		}
		stats.Log()

		outcome := outcomes[0]
		if outcome.Error != "" {
			return eris.New(outcome.Error)
		}
		zap.L().Info("enrich: done",
			zap.String("contact_id", outcome.ContactID),
			zap.String("email", outcome.Email),
			zap.String("method", string(outcome.Method)),
			zap.Bool("quarantined", outcome.Quarantined),
			zap.Bool("skipped", outcome.Skipped),
		)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichContactID, "contact", "", "contact ID to enrich (required)")
	_ = enrichCmd.MarkFlagRequired("contact")
	rootCmd.AddCommand(enrichCmd)
}
