package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meinhoongagan/nhs-staffing/db"
)

// SeedCmd loads the demo fixture, or a YAML file in the same shape with --file.
func SeedCmd(app *AppContext) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo trusts, hospitals, an agency and an admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			if file != "" {
				var err error
				if raw, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("read seed file: %w", err)
				}
			}
			data, err := db.ParseSeed(raw)
			if err != nil {
				return err
			}
			if err := db.Migrate(db.DB); err != nil {
				return err
			}
			if err := db.Seed(cmd.Context(), db.DB, data); err != nil {
				return err
			}
			fmt.Printf("Seeded %d trusts and %d agencies into %s\n", len(data.Trusts), len(data.Agencies), app.Cfg.DBDriver)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture to load instead of the built-in one")
	return cmd
}
