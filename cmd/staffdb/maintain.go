package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/staffdb/internal/maintenance"
)

func newMaintainCmd() *cobra.Command {
	var (
		daemon   bool
		schedule string
		vacuum   bool
	)

	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Optimize the database once, or on a schedule with --daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := maintenance.LoadConfig(app.loader)
			if cmd.Flags().Changed("schedule") {
				cfg.Schedule = schedule
			}
			if cmd.Flags().Changed("vacuum") {
				cfg.Vacuum = vacuum
			}

			scheduler := maintenance.New(app.db, cfg)
			if !daemon {
				if err := scheduler.RunNow(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "maintenance complete")
				return nil
			}

			if err := scheduler.Start(); err != nil {
				return fmt.Errorf("invalid maintenance schedule %q: %w", cfg.Schedule, err)
			}
			defer scheduler.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if next := scheduler.Status().NextRun; next != nil {
				log.Info().Time("next_run", *next).Msg("Waiting for scheduled maintenance")
			}
			<-ctx.Done()
			log.Info().Msg("Received shutdown signal")
			return nil
		},
	}

	cmd.Flags().BoolVar(&daemon, "daemon", false, "Keep running and maintain on the configured schedule")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule, overrides the maintenance.schedule setting")
	cmd.Flags().BoolVar(&vacuum, "vacuum", false, "Also VACUUM, overrides the maintenance.vacuum setting")
	return cmd
}
