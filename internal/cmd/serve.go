package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	appLog "motorsportcal/internal/log"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run updates on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			runOnce := func() {
				if err := runUpdate(cmd, cfg); err != nil {
					appLog.Error("scheduled update failed", err)
				}
			}

			scheduler := cron.New()
			if _, err := scheduler.AddFunc(cfg.RefreshCron, runOnce); err != nil {
				return err
			}

			appLog.Info("scheduler starting", "cron", cfg.RefreshCron)
			runOnce()
			scheduler.Start()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			appLog.Info("signal received, shutting down", "signal", sig.String())

			ctx := scheduler.Stop()
			<-ctx.Done()
			return nil
		},
	}
}
