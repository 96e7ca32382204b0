package main

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/syssam/schemafield/dialect/sql"
	"github.com/syssam/schemafield/dialect/sql/schema"
	"github.com/syssam/schemafield/examples/models"
)

func newMigrateCmd(a *app) *cobra.Command {
	var (
		dryRun      bool
		dropColumns bool
		dropIndexes bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables of the example models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db := a.cfg.Database
			drv, err := sql.Open(db.Dialect, db.DSN)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer drv.Close()
			m, err := schema.NewMigrate(drv,
				schema.WithDropColumn(dropColumns),
				schema.WithDropIndex(dropIndexes),
				schema.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			all := models.All()
			if !dryRun {
				if err := m.Create(cmd.Context(), all...); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration applied.")
				return nil
			}
			changes, err := m.Diff(cmd.Context(), all...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), schema.ValidateChanges(changes))
			fmt.Fprintf(cmd.OutOrStdout(), "%d change(s) pending.\n", len(changes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report pending changes without applying them")
	cmd.Flags().BoolVar(&dropColumns, "drop-columns", false, "allow dropping columns")
	cmd.Flags().BoolVar(&dropIndexes, "drop-indexes", false, "allow dropping indexes")
	return cmd
}
