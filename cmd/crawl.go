package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var crawlURL string

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl one website and print the confidence report",
	Long:  "Runs a single adaptive crawl session against a website and prints the resulting report as JSON. Useful for tuning thresholds without touching the store or the verifier.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		report, err := initCrawler().Run(ctx, crawlURL)
		if err != nil {
			return eris.Wrap(err, "crawl")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(report), "encode crawl report")
	},
}

func init() {
	crawlCmd.Flags().StringVar(&crawlURL, "url", "", "website URL to crawl (required)")
	_ = crawlCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(crawlCmd)
}
