package main

import (
	"context"
	"errors"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/store"
)

var importCSVPath string

// importRow is one line of the intake CSV. One row per contact; organizations
// are deduplicated by canonical domain.
type importRow struct {
	CompanyName string `csv:"company_name"`
	Website     string `csv:"website"`
	ContactName string `csv:"contact_name"`
	RoleTitle   string `csv:"role_title,omitempty"`
	Email       string `csv:"email,omitempty"`
	City        string `csv:"city,omitempty"`
	State       string `csv:"state,omitempty"`
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import organizations and contacts from CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStoreOnly(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		data, err := os.ReadFile(importCSVPath)
		if err != nil {
			return eris.Wrap(err, "read csv")
		}
		var rows []importRow
		if err := csvutil.Unmarshal(data, &rows); err != nil {
			return eris.Wrap(err, "parse csv")
		}

		orgsCreated, contactsCreated, skipped := 0, 0, 0
		for i, row := range rows {
			if row.Website == "" || row.ContactName == "" {
				skipped++
				zap.L().Warn("import: row missing website or contact name",
					zap.Int("row", i+1),
				)
				continue
			}

			org, created, err := resolveOrg(ctx, st, row)
			if err != nil {
				skipped++
				zap.L().Warn("import: row failed",
					zap.Int("row", i+1),
					zap.String("website", row.Website),
					zap.Error(err),
				)
				continue
			}
			if created {
				orgsCreated++
			}

			_, err = st.CreateContact(ctx, model.Contact{
				OrgID:     org.ID,
				Name:      row.ContactName,
				RoleTitle: row.RoleTitle,
				Email:     row.Email,
			})
			if err != nil {
				skipped++
				zap.L().Warn("import: create contact failed",
					zap.Int("row", i+1),
					zap.String("contact", row.ContactName),
					zap.Error(err),
				)
				continue
			}
			contactsCreated++
		}

		zap.L().Info("import complete",
			zap.String("csv", importCSVPath),
			zap.Int("orgs_created", orgsCreated),
			zap.Int("contacts_created", contactsCreated),
			zap.Int("rows_skipped", skipped),
		)
		return nil
	},
}

// resolveOrg finds the organization for a row by canonical domain, creating
// it on first sight.
func resolveOrg(ctx context.Context, st store.Store, row importRow) (*model.Organization, bool, error) {
	domain, err := model.CanonicalDomain(row.Website)
	if err != nil {
		return nil, false, err
	}

	org, err := st.GetOrgByDomain(ctx, domain)
	if err == nil {
		return org, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	org, err = st.CreateOrg(ctx, model.Organization{
		Name:       row.CompanyName,
		WebsiteURL: row.Website,
		City:       row.City,
		State:      row.State,
	})
	if err != nil {
		return nil, false, err
	}
	return org, true, nil
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
