package main

import (
	"github.com/spf13/cobra"

	"content-scoring-service/internal/infra/postgres/migrations"
)

func newMigrateCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := migrations.Run(e.db); err != nil {
				return err
			}

			cmd.Println("migrations applied")
			return nil
		},
	}
}

func newRollbackCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Revert the last applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if err := migrations.Rollback(e.db); err != nil {
				return err
			}

			cmd.Println("last migration rolled back")
			return nil
		},
	}
}
