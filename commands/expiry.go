package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meinhoongagan/nhs-staffing/cron"
	"github.com/meinhoongagan/nhs-staffing/db"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

// CheckExpiringDocumentsCmd runs the expiry notifier once.
func CheckExpiringDocumentsCmd(app *AppContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "check-expiring-documents",
		Short: "Email agencies about nurse documents expiring soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = app.Cfg.ExpiryLookaheadDays
			}
			report, err := cron.NotifyExpiringDocuments(cmd.Context(), db.DB, utils.NewMailer(app.Cfg), days)
			if err != nil {
				return err
			}
			fmt.Printf("Documents expiring within %d days: %d (sent %d, failed %d)\n", days, report.Found, report.Sent, report.Failed)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "look-ahead window in days")
	return cmd
}
