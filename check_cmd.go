package main

import (
	"context"
	"fmt"

	"achievement-engine/config"
	"achievement-engine/services"
	"achievement-engine/store"

	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	var progress bool
	cmd := &cobra.Command{
		Use:   "check <user-id>",
		Short: "Run one award pass for a user against the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger := setupLogger(cfg.LogLevel)
			ctx := context.Background()
			userID := args[0]

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			cat, _, err := loadCatalog(ctx, cfg)
			if err != nil {
				return err
			}

			st := store.NewGormStore(db)
			ledger := services.NewPointsLedger(cat, st)
			engine := services.NewEngine(cat, st, ledger, services.NewAnalyticsMetricsProvider(db, ledger),
				services.WithNotifier(services.NewNotificationService(db, logger)),
				services.WithLogger(logger),
			)

			out := cmd.OutOrStdout()
			awarded := engine.CheckAndAward(ctx, userID)
			for _, a := range awarded {
				fmt.Fprintf(out, "awarded %s (%s, +%d points)\n", a.ID, a.Name, a.Points)
			}
			if len(awarded) == 0 {
				fmt.Fprintln(out, "nothing new")
			}

			total, err := ledger.TotalPoints(ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "total points: %d\n", total)

			if !progress {
				return nil
			}
			report, err := engine.ProgressReport(ctx, userID)
			if err != nil {
				return err
			}
			for _, p := range report {
				fmt.Fprintf(out, "  %-24s %6.0f / %-6.0f earned=%t\n", p.Achievement.ID, p.Progress, p.MaxProgress, p.Earned)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&progress, "progress", false, "Also print the progress report")
	return cmd
}
