package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meinhoongagan/nhs-staffing/db"
)

func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Migrate(db.DB); err != nil {
				return err
			}
			fmt.Printf("Schema migrated (%s)\n", app.Cfg.DBDriver)
			return nil
		},
	}
}
