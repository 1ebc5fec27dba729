package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/luct-report-api/internal/database"
)

func newMigrateCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the reporting tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := flags.open()
			if err != nil {
				return err
			}
			defer closeStore(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DatabaseDriver)
			return nil
		},
	}
}
