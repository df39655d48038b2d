package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	quarantineLimit  int
	quarantineOffset int
)

var quarantineCmd = &cobra.Command{
	Use:   "quarantine",
	Short: "List quarantined contacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.ListQuarantined(ctx, quarantineLimit, quarantineOffset)
		if err != nil {
			return eris.Wrap(err, "list quarantined")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(records), "encode quarantine records")
	},
}

func init() {
	quarantineCmd.Flags().IntVar(&quarantineLimit, "limit", 100, "max records to list")
	quarantineCmd.Flags().IntVar(&quarantineOffset, "offset", 0, "records to skip")
	rootCmd.AddCommand(quarantineCmd)
}
