package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/store"
)

var exportPath string

const exportPageSize = 500

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export contacts and quarantine to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		file := xlsx.NewFile()

		contacts, err := exportContactsSheet(cmd, file, st)
		if err != nil {
			return err
		}
		quarantined, err := exportQuarantineSheet(cmd, file, st)
		if err != nil {
			return err
		}

		if err := file.Save(exportPath); err != nil {
			return eris.Wrap(err, "save workbook")
		}

		zap.L().Info("export complete",
			zap.String("path", exportPath),
			zap.Int("contacts", contacts),
			zap.Int("quarantined", quarantined),
		)
		return nil
	},
}

func exportContactsSheet(cmd *cobra.Command, file *xlsx.File, st store.Store) (int, error) {
	sheet, err := file.AddSheet("Contacts")
	if err != nil {
		return 0, eris.Wrap(err, "add contacts sheet")
	}
	header(sheet, "Contact ID", "Org ID", "Name", "Role", "Email", "Status", "Score", "Method", "Last Enriched")

	total := 0
	for offset := 0; ; offset += exportPageSize {
		contacts, err := st.ListContacts(cmd.Context(), store.ContactFilter{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return total, eris.Wrap(err, "list contacts")
		}
		for _, c := range contacts {
			addRow(sheet,
				c.ID, c.OrgID, c.Name, c.RoleTitle, c.Email,
				string(c.EmailStatus), strconv.Itoa(c.EmailScore),
				string(c.DiscoveryMethod), formatTime(c.LastEnrichedAt),
			)
		}
		total += len(contacts)
		if len(contacts) < exportPageSize {
			return total, nil
		}
	}
}

func exportQuarantineSheet(cmd *cobra.Command, file *xlsx.File, st store.Store) (int, error) {
	sheet, err := file.AddSheet("Quarantine")
	if err != nil {
		return 0, eris.Wrap(err, "add quarantine sheet")
	}
	header(sheet, "Contact ID", "Contact Name", "Role", "Company", "Website", "Attempted", "Attempted Emails", "Reason", "Moved At")

	total := 0
	for offset := 0; ; offset += exportPageSize {
		records, err := st.ListQuarantined(cmd.Context(), exportPageSize, offset)
		if err != nil {
			return total, eris.Wrap(err, "list quarantined")
		}
		for _, q := range records {
			addRow(sheet,
				q.ContactID, q.ContactName, q.RoleTitle, q.CompanyName, q.WebsiteURL,
				strconv.Itoa(q.AttemptedCount), strings.Join(q.AttemptedEmails, ", "),
				q.Reason, q.MovedAt.Format(time.RFC3339),
			)
		}
		total += len(records)
		if len(records) < exportPageSize {
			return total, nil
		}
	}
}

func header(sheet *xlsx.Sheet, titles ...string) {
	row := sheet.AddRow()
	for _, t := range titles {
		row.AddCell().Value = t
	}
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func init() {
	exportCmd.Flags().StringVar(&exportPath, "out", "outreach.xlsx", "output XLSX path")
	rootCmd.AddCommand(exportCmd)
}
