package main

import (
	"github.com/spf13/cobra"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/infra/postgres"
)

func newAuditCmd(connect connectFunc) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Compare point balances with the sum of item scores",
		Long: `Check every user's point balance against the scores of their items.

Drifting balances are reported. With --repair they are reset to the sum of
item scores, and the earnings cache is cleared when any balance changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			audit := service.NewAuditService(postgres.NewStore(e.db), nil, e.log.Logger)
			report, err := audit.Audit(cmd.Context(), repair)
			if err != nil {
				return err
			}

			printAuditReport(cmd, report)

			if report.Repaired() > 0 && e.cfg.Cache.Enabled {
				if err := clearEarningsCache(cmd.Context(), e); err != nil {
					cmd.PrintErrf("warning: earnings cache not cleared: %v\n", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "reset drifting balances")

	return cmd
}

func printAuditReport(cmd *cobra.Command, report *service.AuditReport) {
	cmd.Printf("users checked: %d\n", report.UsersChecked)
	cmd.Printf("drifts:        %d\n", len(report.Drifts))
	cmd.Printf("repaired:      %d\n", report.Repaired())
	cmd.Printf("duration:      %s\n", report.Duration)

	for _, d := range report.Drifts {
		cmd.Printf("  %-36s balance=%d expected=%d diff=%+d repaired=%t\n",
			d.UserID, d.Balance, d.Expected, d.Diff(), d.Repaired)
	}
}
