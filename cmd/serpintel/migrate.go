package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/serpintel/internal/db/postgres"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var (
		down  int
		force int
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (up by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.cfg.Database.Enabled() {
				return fmt.Errorf("database.dsn is not configured")
			}
			db, err := postgres.Connect(cmd.Context(), postgres.Config{DSN: c.cfg.Database.DSN})
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			mg, err := postgres.NewMigrator(db, c.logger)
			if err != nil {
				return err
			}

			switch {
			case cmd.Flags().Changed("force"):
				err = mg.Force(force)
			case down > 0:
				err = mg.Down(down)
			default:
				err = mg.Up()
			}
			if err != nil {
				return err
			}

			v, dirty, err := mg.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
			return nil
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "roll back N migrations instead of migrating up")
	cmd.Flags().IntVar(&force, "force", 0, "force the schema version (clears the dirty flag)")
	return cmd
}
