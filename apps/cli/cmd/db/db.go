package db

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carecrest/hospital-cms/apps/cli/cmd/cliutil"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

// Command groups database maintenance.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	cmd.AddCommand(migrateCommand())
	return cmd
}

func migrateCommand() *cobra.Command {
	var conn cliutil.Conn

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pool, logger, err := conn.Open(ctx)
			if err != nil {
				return err
			}
			defer persistence.ClosePool(pool)

			if err := persistence.Migrate(ctx, pool, logger); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
			return nil
		},
	}

	conn.Bind(cmd)
	return cmd
}
